// Package config loads and saves the .linetl.yaml project configuration.
//
// A .linetl.yaml file in the working directory supplies defaults for the
// CLI: the translation method, languages, prompts, retry policy, cache
// backend and per-provider credentials. Command-line flags override it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/linetl"
	"github.com/ZaguanLabs/linetl/cache"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .linetl.yaml structure.
type File struct {
	// Method is the default translation method (default "gtxFreeAPI").
	Method string `yaml:"method,omitempty"`
	// SourceLang is the source language code (default "auto").
	SourceLang string `yaml:"source_lang,omitempty"`
	// TargetLang is the target language code (default "zh").
	TargetLang string `yaml:"target_lang,omitempty"`
	// TargetLangs is used instead of TargetLang when MultiLanguage is set.
	TargetLangs []string `yaml:"target_langs,omitempty"`
	// MultiLanguage translates into every entry of TargetLangs.
	MultiLanguage bool `yaml:"multi_language,omitempty"`
	// DocType tunes LLM context batching: generic, subtitle or markdown.
	DocType string `yaml:"doc_type,omitempty"`

	SysPrompt  string `yaml:"sys_prompt,omitempty"`
	UserPrompt string `yaml:"user_prompt,omitempty"`

	// RetryCount is the number of retries per request; nil uses the default.
	RetryCount *int `yaml:"retry_count,omitempty"`
	// RetryTimeout bounds a single attempt, e.g. "45s".
	RetryTimeout time.Duration `yaml:"retry_timeout,omitempty"`
	// RequestsPerMinute caps provider calls (0 = unlimited).
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`

	// NoCache disables the translation cache.
	NoCache bool          `yaml:"no_cache,omitempty"`
	Cache   cache.Options `yaml:"cache,omitempty"`

	// Providers holds per-method overrides keyed by method id.
	Providers map[string]linetl.ProviderConfig `yaml:"providers,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading & saving
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".linetl.yaml"

// EnvPrefix prefixes the API key environment variables, see EnvKey.
const EnvPrefix = "LINETL_"

// Load loads and validates .linetl.yaml from the given directory.
// Returns nil if no .linetl.yaml exists.
func Load(dir string) (*File, error) {
	f, err := LoadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return f, err
}

// LoadFile loads and validates the config at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Method != "" {
		m, err := linetl.ParseMethod(f.Method)
		if err != nil {
			return err
		}
		f.Method = string(m)
	}
	if _, err := linetl.ParseDocumentType(f.DocType); err != nil {
		return err
	}
	if f.SourceLang != "" && !linetl.IsValidLanguage(linetl.NormalizeLanguage(f.SourceLang)) {
		return fmt.Errorf("unknown source language %q", f.SourceLang)
	}
	for _, lang := range f.Targets() {
		if lang == "auto" || !linetl.IsValidLanguage(linetl.NormalizeLanguage(lang)) {
			return fmt.Errorf("unknown target language %q", lang)
		}
	}
	if f.RetryCount != nil && *f.RetryCount < 0 {
		return fmt.Errorf("retry_count must not be negative")
	}
	if f.RetryTimeout < 0 || f.RequestsPerMinute < 0 {
		return fmt.Errorf("retry_timeout and requests_per_minute must not be negative")
	}

	// Provider keys must name real methods; normalise their spelling
	for name, pc := range f.Providers {
		m, err := linetl.ParseMethod(name)
		if err != nil {
			return fmt.Errorf("providers: %w", err)
		}
		if string(m) != name {
			delete(f.Providers, name)
			f.Providers[string(m)] = pc
		}
	}
	return nil
}

// Save writes f to FileName in dir.
func (f *File) Save(dir string) error {
	return f.SaveFile(filepath.Join(dir, FileName))
}

// SaveFile writes f to path. The file may hold API keys, so it is created
// readable by the owner only.
func (f *File) SaveFile(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving runtime settings
// ---------------------------------------------------------------------------

// Targets returns the target languages of a run. A nil File yields nil.
func (f *File) Targets() []string {
	if f == nil {
		return nil
	}
	if f.MultiLanguage && len(f.TargetLangs) > 0 {
		return f.TargetLangs
	}
	if f.TargetLang != "" {
		return []string{f.TargetLang}
	}
	return nil
}

// DefaultMethod returns the configured method, or gtxFreeAPI.
func (f *File) DefaultMethod() linetl.Method {
	if f == nil || f.Method == "" {
		return linetl.MethodGTX
	}
	return linetl.Method(f.Method)
}

// Runtime builds the runtime config of method and target. Empty arguments
// fall back to the file; file values are merged over the built-in defaults
// and the API key environment variable wins over both. A nil File is valid.
func (f *File) Runtime(method linetl.Method, target string) linetl.RuntimeConfig {
	if method == "" {
		method = f.DefaultMethod()
	}
	cfg := linetl.DefaultRuntimeConfig(method)

	if f != nil {
		if f.SourceLang != "" {
			cfg.SourceLang = linetl.NormalizeLanguage(f.SourceLang)
		}
		if f.TargetLang != "" {
			cfg.TargetLang = linetl.NormalizeLanguage(f.TargetLang)
		}
		if f.SysPrompt != "" {
			cfg.SysPrompt = f.SysPrompt
		}
		if f.UserPrompt != "" {
			cfg.UserPrompt = f.UserPrompt
		}
		if f.RetryCount != nil {
			cfg.RetryCount = *f.RetryCount
		}
		if f.RetryTimeout > 0 {
			cfg.RetryTimeout = f.RetryTimeout
		}
		cfg.RequestsPerMinute = f.RequestsPerMinute
		cfg.UseCache = !f.NoCache
		if pc, ok := f.Providers[string(method)]; ok {
			cfg.Provider = cfg.Provider.Merge(pc)
		}
	}

	if target != "" {
		cfg.TargetLang = linetl.NormalizeLanguage(target)
	}
	if key := os.Getenv(EnvKey(method)); key != "" {
		cfg.Provider.APIKey = key
	}
	return cfg
}

// SetProvider stores pc as the override of m.
func (f *File) SetProvider(m linetl.Method, pc linetl.ProviderConfig) {
	if f.Providers == nil {
		f.Providers = make(map[string]linetl.ProviderConfig)
	}
	f.Providers[string(m)] = pc
}

// ProviderNames returns the configured provider ids, sorted.
func (f *File) ProviderNames() []string {
	names := make([]string, 0, len(f.Providers))
	for name := range f.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnvKey returns the environment variable holding m's API key,
// e.g. LINETL_DEEPSEEK_API_KEY.
func EnvKey(m linetl.Method) string {
	return EnvPrefix + strings.ToUpper(string(m)) + "_API_KEY"
}

// Overlay returns a copy of f with every value set in over replacing its
// own. Provider overrides are merged per method. Either side may be nil.
func (f *File) Overlay(over *File) *File {
	var out File
	if f != nil {
		out = *f
		out.Providers = make(map[string]linetl.ProviderConfig, len(f.Providers))
		for name, pc := range f.Providers {
			out.Providers[name] = pc
		}
	}
	if over == nil {
		return &out
	}

	if over.Method != "" {
		out.Method = over.Method
	}
	if over.SourceLang != "" {
		out.SourceLang = over.SourceLang
	}
	if over.TargetLang != "" {
		out.TargetLang = over.TargetLang
	}
	if len(over.TargetLangs) > 0 {
		out.TargetLangs = over.TargetLangs
	}
	out.MultiLanguage = out.MultiLanguage || over.MultiLanguage
	if over.DocType != "" {
		out.DocType = over.DocType
	}
	if over.SysPrompt != "" {
		out.SysPrompt = over.SysPrompt
	}
	if over.UserPrompt != "" {
		out.UserPrompt = over.UserPrompt
	}
	if over.RetryCount != nil {
		out.RetryCount = over.RetryCount
	}
	if over.RetryTimeout > 0 {
		out.RetryTimeout = over.RetryTimeout
	}
	if over.RequestsPerMinute > 0 {
		out.RequestsPerMinute = over.RequestsPerMinute
	}
	out.NoCache = out.NoCache || over.NoCache
	if over.Cache != (cache.Options{}) {
		out.Cache = over.Cache
	}
	for name, pc := range over.Providers {
		out.SetProvider(linetl.Method(name), out.Providers[name].Merge(pc))
	}
	return &out
}
