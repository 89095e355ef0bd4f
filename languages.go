package linetl

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is one entry of the supported language table.
type Language struct {
	Code   string
	Name   string // English name, used in prompts
	Native string // Name in the language itself
}

// Languages lists every code accepted as a source or target. "auto" is only
// meaningful as a source.
var Languages = []Language{
	{"auto", "Auto", "Auto"},
	{"en", "English", "English"},
	{"zh", "Simplified Chinese", "简体"},
	{"zh-hant", "Traditional Chinese", "繁體"},
	{"es", "Spanish", "Español"},
	{"de", "German", "Deutsch"},
	{"pt-br", "Portuguese (Brazil)", "Português (Brasil)"},
	{"pt-pt", "Portuguese (Portugal)", "Português (Portugal)"},
	{"ar", "Arabic", "العربية"},
	{"ja", "Japanese", "日本語"},
	{"ko", "Korean", "한국어"},
	{"ru", "Russian", "Русский"},
	{"fr", "French", "Français"},
	{"it", "Italian", "Italiano"},
	{"tr", "Turkish", "Türkçe"},
	{"pl", "Polish", "Polski"},
	{"uk", "Ukrainian", "Українська"},
	{"ro", "Romanian", "Română"},
	{"hu", "Hungarian", "Magyar"},
	{"cs", "Czech", "Čeština"},
	{"sk", "Slovak", "Slovenčina"},
	{"bg", "Bulgarian", "Български"},
	{"sv", "Swedish", "Svenska"},
	{"da", "Danish", "Dansk"},
	{"fi", "Finnish", "Suomi"},
	{"nb", "Norwegian", "Norsk bokmål"},
	{"lt", "Lithuanian", "Lietuvių"},
	{"lv", "Latvian", "Latviešu"},
	{"et", "Estonian", "Eesti"},
	{"el", "Greek", "Ελληνικά"},
	{"sl", "Slovenian", "Slovenščina"},
	{"nl", "Dutch", "Nederlands"},
	{"id", "Indonesian", "Bahasa Indonesia"},
	{"ms", "Malay", "Bahasa Melayu"},
	{"vi", "Vietnamese", "Tiếng Việt"},
	{"hi", "Hindi", "हिन्दी"},
	{"bn", "Bengali", "বাংলা"},
	{"bho", "Bhojpuri", "भोजपुरी"},
	{"mr", "Marathi", "मराठी"},
	{"gu", "Gujarati", "ગુજરાતી"},
	{"ta", "Tamil", "தமிழ்"},
	{"te", "Telugu", "తెలుగు"},
	{"kn", "Kannada", "ಕನ್ನಡ"},
	{"th", "Thai", "ไทย"},
	{"fil", "Filipino(Tagalog)", "Filipino"},
	{"jv", "Javanese", "Basa Jawa"},
	{"he", "Hebrew", "עברית"},
	{"am", "Amharic", "አማርኛ"},
	{"fa", "Persian", "فارسی"},
	{"ug", "Uyghur", "ئۇيغۇرچە"},
	{"ha", "Hausa", "هَرْشٜىٰن هَوْسَا"},
	{"sw", "Swahili", "Kiswahili"},
	{"uz", "Uzbek", "Oʻzbekcha"},
	{"kk", "Kazakh", "Қазақ тілі"},
	{"ky", "Kyrgyz", "Кыргызча"},
	{"tk", "Turkmen", "Türkmençe"},
	{"ur", "Urdu", "اردو"},
	{"hr", "Croatian", "Hrvatski"},
}

var languageIndex = func() map[string]Language {
	idx := make(map[string]Language, len(Languages))
	for _, l := range Languages {
		idx[l.Code] = l
	}
	return idx
}()

// deeplUnsupported holds codes DeepL and DeepLX cannot translate.
var deeplUnsupported = map[string]bool{
	"ms": true, "vi": true, "hi": true, "bn": true, "bho": true, "mr": true,
	"gu": true, "ta": true, "te": true, "kn": true, "th": true, "fil": true,
	"jv": true, "he": true, "am": true, "fa": true, "ug": true, "ha": true,
	"sw": true, "uz": true, "kk": true, "ky": true, "tk": true, "ur": true,
	"hr": true,
}

var azureUnsupported = map[string]bool{"jv": true}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(code string) string {
	if l, ok := languageIndex[code]; ok {
		return l.Name
	}
	return code
}

// IsValidLanguage reports whether code is in the language table.
func IsValidLanguage(code string) bool {
	_, ok := languageIndex[code]
	return ok
}

// IsMethodSupportedForLanguage reports whether m can translate from or into lang.
func IsMethodSupportedForLanguage(m Method, lang string) bool {
	switch m {
	case MethodDeepL, MethodDeepLX:
		return !deeplUnsupported[lang]
	case MethodAzure:
		return !azureUnsupported[lang]
	}
	return true
}

// LanguageSupport is the outcome of CheckLanguageSupport.
type LanguageSupport struct {
	Supported    bool
	ErrorMessage string
}

// CheckLanguageSupport validates both codes and their support by m.
// Unsupported pairs carry a message suggesting the free fallback.
func CheckLanguageSupport(m Method, sourceLang, targetLang string) LanguageSupport {
	if !IsValidLanguage(sourceLang) || !IsValidLanguage(targetLang) {
		return LanguageSupport{ErrorMessage: "Invalid language code provided"}
	}
	for _, lang := range []string{sourceLang, targetLang} {
		if !IsMethodSupportedForLanguage(m, lang) {
			err := &UnsupportedLanguageError{Method: m, Language: lang}
			return LanguageSupport{ErrorMessage: err.Error()}
		}
	}
	return LanguageSupport{Supported: true}
}

// NormalizeLanguage maps a BCP 47 tag or locale ("pt_BR", "zh-TW", "tl")
// onto a code of the language table. It returns "" when nothing matches.
func NormalizeLanguage(code string) string {
	lower := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if IsValidLanguage(lower) {
		return lower
	}

	tag, err := language.Parse(lower)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	script, _ := tag.Script()
	region, _ := tag.Region()

	switch base.String() {
	case "zh":
		if script.String() == "Hant" {
			return "zh-hant"
		}
		return "zh"
	case "pt":
		if region.String() == "PT" {
			return "pt-pt"
		}
		return "pt-br"
	case "tl":
		return "fil"
	case "no", "nn":
		return "nb"
	}
	if IsValidLanguage(base.String()) {
		return base.String()
	}
	return ""
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	base, _, _ := strings.Cut(strings.ReplaceAll(code, "_", "-"), "-")
	if RTLLanguages[strings.ToLower(base)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}

// ToHTMLLang converts a table code to HTML lang attribute format (e.g., "pt-br" → "pt-BR").
func ToHTMLLang(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
