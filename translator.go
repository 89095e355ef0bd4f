package linetl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/linetl/i18n"
)

// ProbeText is the sentence translated by Probe.
const ProbeText = "Hello, world!"

// Strategy is how a run splits its lines into provider requests.
type Strategy string

const (
	// StrategyContext sends numbered batches with surrounding context (LLM only).
	StrategyContext Strategy = "context"
	// StrategyChunk sends character-budget chunks sequentially.
	StrategyChunk Strategy = "chunk"
	// StrategyLine sends every line on its own, concurrently.
	StrategyLine Strategy = "line"
)

// SelectStrategy picks the strategy for n lines under cfg.
func SelectStrategy(cfg RuntimeConfig, docType DocumentType, n int) Strategy {
	switch {
	case docType != "" && cfg.Method.IsLLM() && n > 1:
		return StrategyContext
	case cfg.Provider.ChunkSize > 0:
		return StrategyChunk
	default:
		return StrategyLine
	}
}

// Translator is the main translation engine.
type Translator struct {
	registry   Registry
	cache      TranslationCache
	logger     *zap.Logger
	processors map[string]ContentProcessor
}

// ContentProcessor splits a document into translatable segments and puts
// translations back.
type ContentProcessor interface {
	Extract(content string) (any, []string, error)
	Apply(parsed any, translated []string) (string, error)
	ContentType() string
	DocumentType() DocumentType
}

// ProcessedContent is the result of Translator.Process.
type ProcessedContent struct {
	Content       string   // Translated document
	Strategy      Strategy // How the segments were sent
	TotalSegments int      // Segments extracted from the document
	CachedCount   int      // Segments served from the cache
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// NewTranslator creates a Translator that reaches providers through registry.
func NewTranslator(registry Registry, opts ...TranslatorOption) *Translator {
	t := &Translator{
		registry:   registry,
		logger:     zap.NewNop(),
		processors: make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// RunOption tunes a single translation call.
type RunOption func(*runOptions)

type runOptions struct {
	docType    DocumentType
	docTypeSet  bool
	progress    ProgressFunc
	targetStart func(i int, target string)
}

// WithDocumentType enables context-aware batching for LLM methods.
func WithDocumentType(docType DocumentType) RunOption {
	return func(o *runOptions) {
		o.docType = docType
		o.docTypeSet = true
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) RunOption {
	return func(o *runOptions) {
		o.progress = fn
	}
}

// WithTargetStart sets a callback run before each target of a multi-target
// call starts.
func WithTargetStart(fn func(i int, target string)) RunOption {
	return func(o *runOptions) {
		o.targetStart = fn
	}
}

type runStats struct {
	cached atomic.Int64
}

// run is the state of one TranslateLines call.
type run struct {
	cfg        RuntimeConfig
	abort      *AbortState
	dispatcher *Dispatcher
	cache      TranslationCache
	retry      RetryConfig
	suffix     string
	fullText   string
	logger     *zap.Logger
	progress   ProgressFunc
	stats      runStats
}

func (t *Translator) newRun(ctx context.Context, cfg RuntimeConfig, lines []string, ro runOptions) *run {
	registry := t.registry
	if cfg.RequestsPerMinute > 0 {
		registry = NewRateLimitedRegistry(registry, RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute})
	}

	r := &run{
		cfg:      cfg,
		abort:    NewAbortState(ctx),
		cache:    t.cache,
		retry:    cfg.Retry(),
		suffix:   cfg.CacheSuffix(),
		progress: ro.progress,
		logger: t.logger.With(
			zap.String("run_id", uuid.NewString()),
			zap.String("method", string(cfg.Method)),
			zap.String("target", cfg.TargetLang),
		),
	}
	if t.cache != nil {
		r.cache = &countingCache{TranslationCache: t.cache, hits: &r.stats.cached}
	}
	r.dispatcher = NewDispatcher(registry, r.cache, r.logger)

	// Only build the full text when the prompt asks for it
	if UsesFullText(cfg.EffectiveUserPrompt()) {
		r.fullText = strings.Join(lines, "\n")
	}
	return r
}

func (r *run) ctx() context.Context {
	return r.abort.Context()
}

func (r *run) report(done, total int) {
	if r.progress != nil {
		r.progress(done, total)
	}
}

// sleep pauses for d unless the run is aborted first.
func (r *run) sleep(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-r.abort.Done():
		return r.abort.Err()
	}
}

// storeLine caches a line translated as part of a batch.
func (r *run) storeLine(source, translated string) {
	if r.cache == nil || !HasTranslatableText(source) {
		return
	}
	r.cache.Set(r.ctx(), CacheKey(source, r.suffix), translated)
}

// translate dispatches text with retries. userPrompt, when set, replaces
// the configured user prompt. An auth failure aborts the whole run; once
// the run is aborted every call fails with an error matching ErrAborted.
func (r *run) translate(text, userPrompt string) (string, error) {
	if r.abort.Aborted() {
		return "", r.abort.Err()
	}

	p := r.cfg.Params(text, r.suffix, r.fullText)
	if userPrompt != "" {
		p.UserPrompt = userPrompt
	}

	retry := r.retry
	retry.OnRetry = func(attempt int, err error, retriesLeft int) {
		r.logger.Warn("translation attempt failed",
			zap.Int("attempt", attempt),
			zap.String("text", preview(text)),
			zap.Int("retries_left", retriesLeft),
			zap.Error(err))
	}

	result, err := WithRetry(r.ctx(), retry, func(ctx context.Context) (string, error) {
		if r.abort.Aborted() {
			return "", r.abort.Err()
		}
		out, err := r.dispatcher.Dispatch(ctx, p)
		if err != nil && IsAuthError(err) {
			r.abort.Abort(err)
		}
		return out, err
	})
	if err != nil {
		if r.abort.Aborted() {
			return "", r.abort.Err()
		}
		r.logger.Error("all translation attempts failed",
			zap.Int("attempts", r.retry.MaxRetries+1),
			zap.String("text", preview(text)),
			zap.Error(err))
		return "", err
	}
	return result, nil
}

// TranslateLines translates lines from cfg.SourceLang to cfg.TargetLang and
// returns a slice of the same length and order.
func (t *Translator) TranslateLines(ctx context.Context, lines []string, cfg RuntimeConfig, opts ...RunOption) ([]string, error) {
	out, _, err := t.translateLines(ctx, lines, cfg, opts...)
	return out, err
}

// TranslateText translates a newline-separated text.
func (t *Translator) TranslateText(ctx context.Context, text string, cfg RuntimeConfig, opts ...RunOption) (string, error) {
	out, err := t.TranslateLines(ctx, SplitLines(text), cfg, opts...)
	if err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

func (t *Translator) translateLines(ctx context.Context, lines []string, cfg RuntimeConfig, opts ...RunOption) ([]string, *run, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	if len(lines) == 0 {
		return []string{}, nil, nil
	}

	r := t.newRun(ctx, cfg, lines, ro)
	defer r.abort.Release()

	strategy := SelectStrategy(cfg, ro.docType, len(lines))
	started := time.Now()
	r.logger.Info("translation started",
		zap.Int("lines", len(lines)),
		zap.String("strategy", string(strategy)))

	var (
		out []string
		err error
	)
	switch strategy {
	case StrategyContext:
		out, err = r.translateWithContext(lines, ro.docType)
	case StrategyChunk:
		out, err = r.translateChunks(lines)
	default:
		out, err = r.translateLineByLine(lines)
	}
	if err != nil {
		r.logger.Error("translation failed", zap.Error(err))
		return nil, r, err
	}

	r.logger.Info("translation finished",
		zap.Int("lines", len(lines)),
		zap.Int64("cached", r.stats.cached.Load()),
		zap.Duration("elapsed", time.Since(started)))
	return out, r, nil
}

func (r *run) translateLineByLine(lines []string) ([]string, error) {
	out := make([]string, len(lines))
	err := RunLimited(r.abort, len(lines), LimitOptions{
		Limit:      r.cfg.Concurrency(),
		Delay:      r.cfg.Delay(),
		OnProgress: r.progress,
	}, func(ctx context.Context, i int) error {
		translated, err := r.translate(lines[i], "")
		if err != nil {
			return err
		}
		out[i] = translated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *run) translateChunks(lines []string) ([]string, error) {
	delimiter := ChunkDelimiter(r.cfg.Method)
	chunks := ChunkLines(lines, r.cfg.Provider.ChunkSize, delimiter)
	out := make([]string, len(lines))

	for i, c := range chunks {
		translated, err := r.translate(c.Text, "")
		if err != nil {
			return nil, err
		}
		aligned, err := c.Align(translated, lines, delimiter)
		if err != nil {
			r.logger.Error("chunk line count mismatch",
				zap.Int("from", c.Start+1), zap.Int("to", c.End), zap.Error(err))
			return nil, err
		}
		copy(out[c.Start:c.End], aligned)

		r.report(i+1, len(chunks))
		if i < len(chunks)-1 {
			if err := r.sleep(r.cfg.Delay()); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// TargetResult holds the lines translated into one target language.
type TargetResult struct {
	TargetLang string
	Lines      []string
}

// forEachTarget runs fn once per target with a copy of cfg aimed at it.
// Progress is reported across all targets: target i of n maps done/total
// onto i*total+done out of n*total.
func forEachTarget(cfg RuntimeConfig, targets []string, opts []RunOption, fn func(cfg RuntimeConfig, opts []RunOption) error) error {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	for idx, target := range targets {
		c := cfg
		c.TargetLang = target

		runOpts := append([]RunOption{}, opts...)
		if ro.progress != nil {
			offset, files := idx, len(targets)
			runOpts = append(runOpts, WithProgress(func(done, total int) {
				ro.progress(offset*total+done, files*total)
			}))
		}
		if ro.targetStart != nil {
			ro.targetStart(idx, target)
		}

		if err := fn(c, runOpts); err != nil {
			return fmt.Errorf("translate into %s: %w", target, err)
		}
	}
	return nil
}

// TranslateMulti translates lines into every target in turn. Each target is
// a separate run. On failure the results of the completed targets are
// returned along with the error.
func (t *Translator) TranslateMulti(ctx context.Context, lines []string, cfg RuntimeConfig, targets []string, opts ...RunOption) ([]TargetResult, error) {
	results := make([]TargetResult, 0, len(targets))
	err := forEachTarget(cfg, targets, opts, func(c RuntimeConfig, runOpts []RunOption) error {
		out, err := t.TranslateLines(ctx, lines, c, runOpts...)
		if err != nil {
			return err
		}
		results = append(results, TargetResult{TargetLang: c.TargetLang, Lines: out})
		return nil
	})
	return results, err
}

// TargetDocument is one target of ProcessMulti.
type TargetDocument struct {
	TargetLang string
	Elapsed    time.Duration
	*ProcessedContent
}

// ProcessMulti runs Process for every target in turn. Like TranslateMulti it
// returns the completed targets along with the first error.
func (t *Translator) ProcessMulti(ctx context.Context, content, contentType string, cfg RuntimeConfig, targets []string, opts ...RunOption) ([]TargetDocument, error) {
	docs := make([]TargetDocument, 0, len(targets))
	err := forEachTarget(cfg, targets, opts, func(c RuntimeConfig, runOpts []RunOption) error {
		start := time.Now()
		res, err := t.Process(ctx, content, contentType, c, runOpts...)
		if err != nil {
			return err
		}
		docs = append(docs, TargetDocument{
			TargetLang:       c.TargetLang,
			Elapsed:          time.Since(start),
			ProcessedContent: res,
		})
		return nil
	})
	return docs, err
}

// Process translates a document of the given content type with the
// registered processor.
func (t *Translator) Process(ctx context.Context, content, contentType string, cfg RuntimeConfig, opts ...RunOption) (*ProcessedContent, error) {
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, segments, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if !ro.docTypeSet {
		opts = append(opts, WithDocumentType(processor.DocumentType()))
		ro.docType = processor.DocumentType()
	}

	if len(segments) == 0 {
		return &ProcessedContent{Content: content, Strategy: StrategyLine}, nil
	}

	translated, r, err := t.translateLines(ctx, segments, cfg, opts...)
	if err != nil {
		return nil, err
	}

	result, err := processor.Apply(parsed, translated)
	if err != nil {
		return nil, err
	}

	if contentType == "html" {
		result = setHTMLAttributes(result, cfg.TargetLang)
	}

	return &ProcessedContent{
		Content:       result,
		Strategy:      SelectStrategy(cfg, ro.docType, len(segments)),
		TotalSegments: len(segments),
		CachedCount:   int(r.stats.cached.Load()),
	}, nil
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func setHTMLAttributes(html, targetLang string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", ToHTMLLang(targetLang))
		htmlTag.SetAttr("dir", GetDirection(targetLang))
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}

	return result
}

// probeMethods are the methods checked with a live request before a run.
var probeMethods = map[Method]bool{
	MethodDeepL: true, MethodDeepLX: true, MethodLLM: true, MethodGTX: true,
}

// Validate checks cfg before a run: configuration, language support for
// every target (cfg.TargetLang when none are given) and, for methods that
// commonly break at runtime, a probe translation. An unsupported language
// yields *UnsupportedLanguageError; callers usually switch to DefaultMethod.
func (t *Translator) Validate(ctx context.Context, cfg RuntimeConfig, targets ...string) error {
	if len(targets) == 0 {
		targets = []string{cfg.TargetLang}
	}

	for _, target := range targets {
		c := cfg
		c.TargetLang = target
		if err := c.Validate(); err != nil {
			return err
		}
		if err := checkSupport(c.Method, c.SourceLang, target); err != nil {
			return err
		}
	}

	if probeMethods[cfg.Method] {
		if err := t.Probe(ctx, cfg); err != nil {
			return &TranslationError{Message: ProbeFailureMessage(cfg.Method), Cause: err}
		}
	}
	return nil
}

func checkSupport(m Method, source, target string) error {
	res := CheckLanguageSupport(m, source, target)
	if res.Supported {
		return nil
	}
	for _, lang := range []string{source, target} {
		if !IsMethodSupportedForLanguage(m, lang) {
			return &UnsupportedLanguageError{Method: m, Language: lang}
		}
	}
	return &ConfigError{Method: m, Message: i18n.T(res.ErrorMessage)}
}

// ProbeFailureMessage returns the localized message shown when the probe of m fails.
func ProbeFailureMessage(m Method) string {
	switch m {
	case MethodDeepLX:
		return i18n.T("DeepLX is currently unavailable. Please switch to another translation method.")
	case MethodDeepL:
		return i18n.T("DeepL is currently unavailable. Please check the API key and URL.")
	case MethodLLM:
		return i18n.T("The custom LLM endpoint is unavailable. Please check the URL and model.")
	case MethodGTX:
		return i18n.T("The free Google Translate API (GTX) is currently unavailable. Please check your network connection.")
	}
	return i18n.T("Translation test failed.")
}

// Probe sends ProbeText from English to Simplified Chinese with the cache
// off and a single attempt. Custom prompts are only used by MethodLLM.
func (t *Translator) Probe(ctx context.Context, cfg RuntimeConfig) error {
	c := cfg
	c.SourceLang = "en"
	c.TargetLang = "zh"
	c.UseCache = false
	if c.Method != MethodLLM {
		c.SysPrompt, c.UserPrompt = "", ""
	}

	timeout := c.RetryTimeout
	if timeout <= 0 {
		timeout = DefaultRetryTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := NewDispatcher(t.registry, nil, t.logger)
	out, err := d.Dispatch(probeCtx, c.Params(ProbeText, c.CacheSuffix(), ""))
	if err != nil {
		t.logger.Warn("probe translation failed", zap.String("method", string(c.Method)), zap.Error(err))
		return err
	}
	if strings.TrimSpace(out) == "" {
		return errors.New("probe returned an empty translation")
	}
	return nil
}

// countingCache counts hits of the wrapped cache.
type countingCache struct {
	TranslationCache
	hits *atomic.Int64
}

func (c *countingCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.TranslationCache.Get(ctx, key)
	if ok {
		c.hits.Add(1)
	}
	return v, ok
}
