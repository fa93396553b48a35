package config

// DefaultUserAgent mimics a desktop Chrome build; several of the bank
// sites serve a reduced page to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// DefaultAcceptLanguage prefers the languages the bank sites publish in.
const DefaultAcceptLanguage = "uz,ru;q=0.9,en;q=0.8"
