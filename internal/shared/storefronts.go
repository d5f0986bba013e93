package shared

// Storefronts are the App Store country codes scraped by default.
var Storefronts = []string{
	"at", "by", "bg", "cz", "fr", "de", "gr", "it", "md", "me", "ro", "ch", "gb",
	"af", "bh", "cn", "in", "ir", "iq", "il", "kz", "kw", "kg", "mv", "pk", "qa",
	"sa", "tj", "tr", "tm", "uz", "ae", "ru", "az",
}
