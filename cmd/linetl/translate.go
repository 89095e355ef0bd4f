package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/linetl"
	"github.com/ZaguanLabs/linetl/cache"
	"github.com/ZaguanLabs/linetl/config"
	"github.com/ZaguanLabs/linetl/processor"
)

// cacheFlags are the cache backend overrides shared by translate and cache.
type cacheFlags struct {
	backend  string
	path     string
	redisURL string
}

func (c *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.backend, "cache", "", "Cache backend: sqlite, redis, memory or none")
	cmd.Flags().StringVar(&c.path, "cache-path", "", "SQLite cache file (default: $XDG_CACHE_HOME/linetl/cache.db)")
	cmd.Flags().StringVar(&c.redisURL, "redis-url", "", "Redis URL for the redis backend")
}

// options applies the flags over the configured cache options.
func (c *cacheFlags) options(base cache.Options) cache.Options {
	opts := base
	if c.backend != "" {
		opts.Backend = c.backend
	}
	if c.path != "" {
		opts.Path = c.path
	}
	if c.redisURL != "" {
		opts.RedisURL = c.redisURL
		if c.backend == "" {
			opts.Backend = cache.BackendRedis
		}
	}
	return opts
}

type translateArgs struct {
	method       string
	source       string
	target       string
	targets      string
	docType      string
	format       string
	apiKey       string
	noCache      bool
	retryCount   int
	retryTimeout time.Duration
	rpm          int
	output       string
	jsonOutput   bool
	skipValidate bool
	quiet        bool
	cache        cacheFlags
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func (a *app) newTranslateCmd() *cobra.Command {
	var ta translateArgs

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a file or stdin",
		Long: `Translate a document. The format is taken from the file extension
(.srt, .md, .html, anything else is plain text) unless --format is given.
Without a file the document is read from stdin.

Examples:
  # Free Google endpoint, English subtitles to Simplified Chinese
  linetl translate movie.srt --source en --target zh -o movie.zh.srt

  # DeepSeek with context batching, into three languages at once
  linetl translate README.md --method deepseek --targets ja,ko,de

  # Plain text from stdin
  echo "Hello" | linetl translate --target fr`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(cmd, args, ta)
		},
	}

	cmd.Flags().StringVarP(&ta.method, "method", "m", "", "Translation method (see 'linetl languages --method')")
	cmd.Flags().StringVarP(&ta.source, "source", "s", "", "Source language code (default: auto)")
	cmd.Flags().StringVarP(&ta.target, "target", "t", "", "Target language code (default: zh)")
	cmd.Flags().StringVar(&ta.targets, "targets", "", "Comma-separated target languages; one output per language")
	cmd.Flags().StringVar(&ta.docType, "doc-type", "", "Context batching flavor for LLM methods: generic, subtitle or markdown")
	cmd.Flags().StringVarP(&ta.format, "format", "f", "", "Input format: text, markdown, srt or html")
	cmd.Flags().StringVar(&ta.apiKey, "api-key", "", "Provider API key (or LINETL_<METHOD>_API_KEY)")
	cmd.Flags().BoolVar(&ta.noCache, "no-cache", false, "Do not read or write the translation cache")
	cmd.Flags().IntVar(&ta.retryCount, "retry-count", linetl.DefaultRetryCount, "Retries per request")
	cmd.Flags().DurationVar(&ta.retryTimeout, "retry-timeout", linetl.DefaultRetryTimeout, "Timeout of a single attempt")
	cmd.Flags().IntVar(&ta.rpm, "rpm", 0, "Maximum requests per minute (0 = unlimited)")
	cmd.Flags().StringVarP(&ta.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&ta.jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&ta.skipValidate, "skip-validate", false, "Skip configuration checks and the probe request")
	cmd.Flags().BoolVarP(&ta.quiet, "quiet", "q", false, "Suppress progress output")
	ta.cache.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("method", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, m := range linetl.Methods() {
			out = append(out, string(m))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// flagLayer turns the flags that were set on cmd into a config layer.
func (ta translateArgs) flagLayer(cmd *cobra.Command) (*config.File, error) {
	f := &config.File{}
	if ta.method != "" {
		m, err := linetl.ParseMethod(ta.method)
		if err != nil {
			return nil, err
		}
		f.Method = string(m)
	}
	f.SourceLang = ta.source
	f.TargetLang = ta.target
	if ta.targets != "" {
		f.TargetLangs = splitList(ta.targets)
		f.MultiLanguage = true
	}
	if ta.docType != "" {
		if _, err := linetl.ParseDocumentType(ta.docType); err != nil {
			return nil, err
		}
		f.DocType = ta.docType
	}
	if cmd.Flags().Changed("retry-count") {
		if ta.retryCount < 0 {
			return nil, fmt.Errorf("--retry-count must not be negative")
		}
		n := ta.retryCount
		f.RetryCount = &n
	}
	if cmd.Flags().Changed("retry-timeout") {
		f.RetryTimeout = ta.retryTimeout
	}
	f.RequestsPerMinute = ta.rpm
	f.NoCache = ta.noCache
	return f, nil
}

// targetResult is one entry of the --json output.
type targetResult struct {
	Target        string `json:"target"`
	Output        string `json:"output,omitempty"`
	Content       string `json:"content,omitempty"`
	Strategy      string `json:"strategy"`
	TotalSegments int    `json:"total_segments"`
	CachedCount   int    `json:"cached_count"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

func (a *app) runTranslate(cmd *cobra.Command, args []string, ta translateArgs) error {
	ctx := cmd.Context()

	file, err := a.loadConfig()
	if err != nil {
		return err
	}
	flags, err := ta.flagLayer(cmd)
	if err != nil {
		return err
	}
	file = file.Overlay(flags)

	// Input
	var (
		input     string
		inputPath string
	)
	if len(args) == 0 {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input = string(data)
	} else {
		inputPath = args[0]
		data, err := os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		input = string(data)
	}

	contentType := ta.format
	if contentType == "" {
		contentType = processor.ContentTypeForFile(inputPath)
	}

	cfg := file.Runtime("", "")
	if ta.apiKey != "" {
		cfg.Provider.APIKey = ta.apiKey
	}

	var targets []string
	for _, t := range file.Targets() {
		code := linetl.NormalizeLanguage(t)
		if code == "" {
			return fmt.Errorf("unknown target language %q", t)
		}
		targets = append(targets, code)
	}
	if len(targets) == 0 {
		targets = []string{cfg.TargetLang}
	}
	if len(targets) > 1 && inputPath == "" && ta.output == "" && !ta.jsonOutput {
		return errors.New("--output is required when translating stdin into several languages")
	}

	// Engine
	logger := a.newLogger()
	defer func() { _ = logger.Sync() }()

	store := cache.Store(cache.Nop{})
	if cfg.UseCache {
		store = cache.Open(ctx, ta.cache.options(file.Cache), logger)
	}
	defer store.Close()

	opts := []linetl.TranslatorOption{
		linetl.WithCache(store),
		linetl.WithLogger(logger),
	}
	for _, p := range processor.All() {
		opts = append(opts, linetl.WithProcessor(p))
	}
	tr := linetl.NewTranslator(newRegistry(logger), opts...)

	if !ta.skipValidate {
		if err := tr.Validate(ctx, cfg, targets...); err != nil {
			var unsupported *linetl.UnsupportedLanguageError
			if errors.As(err, &unsupported) {
				a.warn("try --method %s, which supports every language", linetl.DefaultMethod)
			}
			return err
		}
	}

	var runOpts []linetl.RunOption
	if file.DocType != "" {
		docType, _ := linetl.ParseDocumentType(file.DocType)
		runOpts = append(runOpts, linetl.WithDocumentType(docType))
	}

	name := inputPath
	if name == "" {
		name = "stdin"
	}
	showProgress := !ta.quiet && !ta.jsonOutput
	if showProgress {
		runOpts = append(runOpts,
			linetl.WithTargetStart(func(i int, target string) {
				if i > 0 {
					fmt.Fprintln(a.stderr)
				}
				a.info("Translating %s to %s with %s", filepath.Base(name), linetl.GetLanguageName(target), cfg.Method.Label())
			}),
			linetl.WithProgress(func(done, total int) {
				fmt.Fprintf(a.stderr, "\r    %d/%d", done, total)
			}),
		)
	}

	docs, runErr := tr.ProcessMulti(ctx, input, contentType, cfg, targets, runOpts...)
	if showProgress {
		fmt.Fprintln(a.stderr)
	}

	// Completed targets are written even when a later one failed
	var results []targetResult
	for _, doc := range docs {
		out := outputPath(ta.output, inputPath, doc.TargetLang, len(targets) > 1)
		r := targetResult{
			Target:        doc.TargetLang,
			Output:        out,
			Strategy:      string(doc.Strategy),
			TotalSegments: doc.TotalSegments,
			CachedCount:   doc.CachedCount,
			ElapsedMs:     doc.Elapsed.Milliseconds(),
		}

		switch {
		case out != "":
			if err := os.WriteFile(out, []byte(doc.Content), 0644); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}
		case ta.jsonOutput:
			r.Content = doc.Content
		default:
			fmt.Fprint(a.stdout, doc.Content)
		}
		results = append(results, r)

		if showProgress {
			a.success("%s: %d segments in %v (%d from cache)", doc.TargetLang, doc.TotalSegments,
				doc.Elapsed.Round(time.Millisecond), doc.CachedCount)
			if out != "" {
				a.success("Wrote %s", out)
			}
		}
	}
	if runErr != nil {
		return fmt.Errorf("translation failed: %w", runErr)
	}

	if ta.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}

// outputPath returns the file a target is written to, or "" for stdout.
// With several targets the language code is inserted before the extension:
// movie.srt → movie.de.srt.
func outputPath(output, input, target string, multi bool) string {
	base := output
	if base == "" {
		if !multi || input == "" {
			return ""
		}
		base = input
	}
	if !multi {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + target + ext
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
