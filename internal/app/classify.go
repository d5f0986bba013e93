package app

// UnknownLanguage is returned for country codes missing from the table.
const UnknownLanguage = "Unknown"

// The review language is inferred from the storefront country only.
var countryLanguages = map[string]string{
	"ru": "Russian", "by": "Russian", "kz": "Russian",
	"az": "Azerbaijani",
	"tr": "Turkish",
	"gb": "English", "us": "English", "in": "English", "pk": "English",
	"sa": "Arabic", "ae": "Arabic",
	"de": "German",
	"fr": "French",
	"it": "Italian",
	"cn": "Chinese",
	"cz": "Czech",
}

// ClassifyLanguage maps a storefront country code to a display language name.
func ClassifyLanguage(countryCode string) string {
	if l, ok := countryLanguages[countryCode]; ok {
		return l
	}
	return UnknownLanguage
}
