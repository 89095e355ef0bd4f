// Package i18n translates linetl's own user-facing messages.
//
// Translations are gettext catalogs embedded in the binary and read with
// gotext. Call Init once at startup; until then every lookup returns the
// English message unchanged.
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.Tf("Translated %d lines", n))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
)

// Directory structure: locales/{lang}/LC_MESSAGES/linetl.po
//
//go:embed all:locales
var locales embed.FS

const domain = "linetl"

var (
	mu sync.RWMutex
	po *gotext.Locale
)

// Init loads the catalog for lang. An empty lang is detected from the
// environment, following GNU gettext precedence.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	l := gotext.NewLocaleFSWithPath(lang, locales, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)

	mu.Lock()
	po = l
	mu.Unlock()
}

func locale() *gotext.Locale {
	mu.RLock()
	defer mu.RUnlock()
	return po
}

// T translates msgid, or returns it unchanged when no translation exists.
func T(msgid string) string {
	l := locale()
	if l == nil {
		return msgid
	}
	return l.Get(msgid)
}

// Tf translates format and then formats it with args.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	l := locale()
	if l == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return l.GetN(singular, plural, n)
}

// Nf is N followed by formatting with args.
func Nf(singular, plural string, n int, args ...any) string {
	return fmt.Sprintf(N(singular, plural, n), args...)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon-separated list
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "zh_CN.UTF-8" -> "zh_CN"
		val, _, _ = strings.Cut(val, ".")
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
