// Package settings stores the user's translation settings and moves them
// between machines as JSON.
//
// The store lives in the XDG data directory:
//
//	$XDG_DATA_HOME/linetl/settings.json  (default: ~/.local/share/linetl/)
//
// The export format is shared with the web translator this tool grew out
// of, so files exported there import here and vice versa:
//
//	{
//	  "translationConfigs": {"deepseek": {"apiKey": "...", "model": "...", ...}},
//	  "sysPrompt": "...", "userPrompt": "...",
//	  "translationMethod": "gtxFreeAPI",
//	  "sourceLanguage": "auto", "targetLanguage": "zh",
//	  "target_langs": ["zh", "en"], "multiLanguageMode": false,
//	  "exportDate": "2025-01-02T03:04:05Z", "version": "1.0"
//	}
//
// File permissions are 0600 (owner read/write only).
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ZaguanLabs/linetl"
	"github.com/ZaguanLabs/linetl/config"
)

const (
	dataDirName = "linetl"
	fileName    = "settings.json"

	// Version is written into every export.
	Version = "1.0"
)

// ErrInvalidFormat is returned when an imported document is not a JSON object.
var ErrInvalidFormat = errors.New("invalid settings format")

// Settings is the user's translation state.
type Settings struct {
	TranslationConfigs map[linetl.Method]linetl.ProviderConfig
	SysPrompt          string
	UserPrompt         string
	TranslationMethod  linetl.Method
	SourceLanguage     string
	TargetLanguage     string
	TargetLangs        []string
	MultiLanguageMode  bool
}

// document is the JSON shape of an export. translationConfigs keeps the raw
// objects so their key sets can be checked on import.
type document struct {
	TranslationConfigs map[string]json.RawMessage `json:"translationConfigs"`
	SysPrompt          *string                    `json:"sysPrompt"`
	UserPrompt         *string                    `json:"userPrompt"`
	TranslationMethod  *string                    `json:"translationMethod"`
	SourceLanguage     *string                    `json:"sourceLanguage"`
	TargetLanguage     *string                    `json:"targetLanguage"`
	TargetLangs        []string                   `json:"target_langs"`
	MultiLanguageMode  *bool                      `json:"multiLanguageMode"`
	ExportDate         string                     `json:"exportDate,omitempty"`
	Version            string                     `json:"version,omitempty"`
}

// Default returns the settings of a fresh install.
func Default() *Settings {
	return &Settings{
		TranslationConfigs: linetl.DefaultProviderConfigs(),
		SysPrompt:          linetl.DefaultSysPrompt,
		UserPrompt:         linetl.DefaultUserPrompt,
		TranslationMethod:  linetl.MethodGTX,
		SourceLanguage:     "auto",
		TargetLanguage:     "zh",
		TargetLangs:        []string{"zh"},
	}
}

// ---------------------------------------------------------------------------
// Export / import
// ---------------------------------------------------------------------------

// Export writes s as indented JSON stamped with the current time and Version.
func (s *Settings) Export(w io.Writer) error {
	return s.export(w, time.Now())
}

func (s *Settings) export(w io.Writer, now time.Time) error {
	configs := make(map[string]json.RawMessage, len(s.TranslationConfigs))
	for m, pc := range s.TranslationConfigs {
		raw, err := json.Marshal(configFields(m, pc))
		if err != nil {
			return fmt.Errorf("marshaling %s config: %w", m, err)
		}
		configs[string(m)] = raw
	}

	method := string(s.TranslationMethod)
	doc := document{
		TranslationConfigs: configs,
		SysPrompt:          &s.SysPrompt,
		UserPrompt:         &s.UserPrompt,
		TranslationMethod:  &method,
		SourceLanguage:     &s.SourceLanguage,
		TargetLanguage:     &s.TargetLanguage,
		TargetLangs:        s.TargetLangs,
		MultiLanguageMode:  &s.MultiLanguageMode,
		ExportDate:         now.UTC().Format(time.RFC3339),
		Version:            Version,
	}
	if doc.TargetLangs == nil {
		doc.TargetLangs = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}

// ExportFile writes the export to path.
func (s *Settings) ExportFile(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Export(f)
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Updated []linetl.Method // configs taken from the file
	Reset   []linetl.Method // configs whose key set was stale, reset keeping the API key
	Skipped []string        // unknown method ids
}

// Import merges the fields present in r into s. Absent fields keep their
// current values. A provider config whose key set differs from the
// method's current key set is replaced by the defaults, keeping its API key.
func (s *Settings) Import(r io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var doc *document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc == nil {
		return nil, ErrInvalidFormat
	}

	method := s.TranslationMethod
	if doc.TranslationMethod != nil {
		if method, err = linetl.ParseMethod(*doc.TranslationMethod); err != nil {
			return nil, err
		}
	}

	res := &ImportResult{}
	configs := make(map[linetl.Method]linetl.ProviderConfig, len(doc.TranslationConfigs))
	for name, raw := range doc.TranslationConfigs {
		m, err := linetl.ParseMethod(name)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		pc, valid, err := decodeConfig(m, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, name, err)
		}
		if !valid {
			configs[m] = linetl.ResetProviderConfig(m, pc)
			res.Reset = append(res.Reset, m)
			continue
		}
		configs[m] = pc
		res.Updated = append(res.Updated, m)
	}

	if s.TranslationConfigs == nil {
		s.TranslationConfigs = make(map[linetl.Method]linetl.ProviderConfig, len(configs))
	}
	for m, pc := range configs {
		s.TranslationConfigs[m] = pc
	}
	slices.Sort(res.Updated)
	slices.Sort(res.Reset)
	slices.Sort(res.Skipped)

	if doc.SysPrompt != nil {
		s.SysPrompt = *doc.SysPrompt
	}
	if doc.UserPrompt != nil {
		s.UserPrompt = *doc.UserPrompt
	}
	s.TranslationMethod = method
	if doc.SourceLanguage != nil {
		s.SourceLanguage = *doc.SourceLanguage
	}
	if doc.TargetLanguage != nil {
		s.TargetLanguage = *doc.TargetLanguage
	}
	if doc.TargetLangs != nil {
		s.TargetLangs = doc.TargetLangs
	}
	if doc.MultiLanguageMode != nil {
		s.MultiLanguageMode = *doc.MultiLanguageMode
	}
	return res, nil
}

// ImportFile merges the export at path into s.
func (s *Settings) ImportFile(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.Import(f)
}

// decodeConfig parses one provider object and reports whether its key set
// matches m's.
func decodeConfig(m linetl.Method, raw json.RawMessage) (linetl.ProviderConfig, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return linetl.ProviderConfig{}, false, err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	var pc linetl.ProviderConfig
	if err := json.Unmarshal(raw, &pc); err != nil {
		// A stale config may carry a field of the wrong type; keep what the
		// reset needs.
		var key struct {
			APIKey string `json:"apiKey"`
		}
		_ = json.Unmarshal(raw, &key)
		return linetl.ProviderConfig{APIKey: key.APIKey}, false, nil
	}
	return pc, linetl.IsConfigStructureValid(m, keys), nil
}

// configFields renders pc with exactly the keys of m's config, so an export
// always passes the key-set check on import.
func configFields(m linetl.Method, pc linetl.ProviderConfig) map[string]any {
	def := linetl.DefaultProviderConfig(m)
	out := make(map[string]any)
	for _, key := range linetl.ConfigKeys(m) {
		switch key {
		case "apiKey":
			out[key] = pc.APIKey
		case "url":
			out[key] = pc.URL
		case "region":
			out[key] = pc.Region
		case "model":
			out[key] = pc.Model
		case "apiVersion":
			out[key] = pc.APIVersion
		case "temperature":
			out[key] = pc.TemperatureOr(def.TemperatureOr(0))
		case "chunkSize":
			out[key] = pc.ChunkSize
		case "delayTime":
			out[key] = pc.DelayTime
		case "batchSize":
			out[key] = pc.BatchSize
		case "contextWindow":
			out[key] = pc.ContextWindow
		case "useRelay":
			out[key] = pc.UseRelay
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Runtime view
// ---------------------------------------------------------------------------

// File converts s into a config layer, so project files and flags can be
// applied on top of it.
func (s *Settings) File() *config.File {
	f := &config.File{
		Method:        string(s.TranslationMethod),
		SourceLang:    s.SourceLanguage,
		TargetLang:    s.TargetLanguage,
		TargetLangs:   s.TargetLangs,
		MultiLanguage: s.MultiLanguageMode,
	}
	if s.SysPrompt != linetl.DefaultSysPrompt {
		f.SysPrompt = s.SysPrompt
	}
	if s.UserPrompt != linetl.DefaultUserPrompt {
		f.UserPrompt = s.UserPrompt
	}
	for m, pc := range s.TranslationConfigs {
		f.SetProvider(m, pc)
	}
	return f
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for linetl.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the settings store path for display purposes.
func FilePath() string {
	dir, err := dataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// Load reads the settings store. A missing or unreadable store yields the
// defaults.
func Load() *Settings {
	s := Default()
	path := FilePath()
	if path == "" {
		return s
	}
	if _, err := s.ImportFile(path); err != nil {
		return Default()
	}
	return s
}

// Save writes s to the settings store.
func (s *Settings) Save() error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	return s.ExportFile(filepath.Join(dir, fileName))
}
