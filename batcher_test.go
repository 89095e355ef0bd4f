package linetl

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var slotPattern = regexp.MustCompile(`\[TRANSLATE_(\d+)\](.*?)\[/TRANSLATE_\d+\]`)

// fakeLLM answers marked-up batches slot by slot and plain lines directly.
type fakeLLM struct {
	mu      sync.Mutex
	batches []int // slot count of every batch request
	singles []string

	// drop reports whether slot k of a batch with n slots is left out.
	drop func(n, k int) bool
	// batchErr, when set, fails every batch request.
	batchErr error
}

func (f *fakeLLM) Translate(ctx context.Context, p Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.Contains(p.Text, "[TRANSLATE_") {
		f.singles = append(f.singles, p.Text)
		return "DE:" + p.Text, nil
	}

	slots := slotPattern.FindAllStringSubmatch(p.Text, -1)
	f.batches = append(f.batches, len(slots))
	if f.batchErr != nil {
		return "", f.batchErr
	}

	var b strings.Builder
	for k, m := range slots {
		if f.drop != nil && f.drop(len(slots), k) {
			continue
		}
		fmt.Fprintf(&b, "[TRANSLATE_%s]DE:%s[/TRANSLATE_%s]\n", m[1], m[2], m[1])
	}
	if b.Len() == 0 {
		return "Sorry, I can only help with translations.", nil
	}
	return b.String(), nil
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return lines
}

func contextConfig(window int) RuntimeConfig {
	cfg := fastConfig(MethodOpenAI)
	cfg.Provider.APIKey = "sk-test"
	cfg.Provider.ContextWindow = window
	return cfg
}

func TestContextPadding(t *testing.T) {
	tests := []struct{ window, want int }{
		{1, 1},
		{5, 2},
		{20, 10},
		{50, 25},
		{200, 25},
	}
	for _, tt := range tests {
		if got := ContextPadding(tt.window); got != tt.want {
			t.Errorf("ContextPadding(%d) = %d, want %d", tt.window, got, tt.want)
		}
	}
}

func TestBuildContextBlock(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e", "f"}
	got := BuildContextBlock(lines, 2, 4, 2)
	want := "[CONTEXT]b[/CONTEXT]\n[TRANSLATE_0]c[/TRANSLATE_0]\n[TRANSLATE_1]d[/TRANSLATE_1]\n[CONTEXT]e[/CONTEXT]"
	if got != want {
		t.Errorf("BuildContextBlock() =\n%s\nwant\n%s", got, want)
	}

	// Padding is clamped at the edges
	edge := BuildContextBlock(lines, 0, 1, 10)
	if !strings.HasPrefix(edge, "[TRANSLATE_0]a[/TRANSLATE_0]") {
		t.Errorf("block should start with the target line: %q", edge)
	}
	if strings.Count(edge, "[CONTEXT]") != 5 {
		t.Errorf("expected 5 context lines, got %q", edge)
	}
}

func TestTranslateWithContext(t *testing.T) {
	llm := &fakeLLM{}
	tr := NewTranslator(adapterMap{MethodOpenAI: llm}, WithCache(newMapCache()))

	lines := numberedLines(25)
	out, err := tr.TranslateLines(context.Background(), lines, contextConfig(10), WithDocumentType(DocumentSubtitle))
	if err != nil {
		t.Fatalf("TranslateLines failed: %v", err)
	}

	for i, line := range out {
		if line != "DE:"+lines[i] {
			t.Errorf("out[%d] = %q", i, line)
		}
	}
	if want := []int{10, 10, 5}; fmt.Sprint(llm.batches) != fmt.Sprint(want) {
		t.Errorf("batches = %v, want %v", llm.batches, want)
	}
	if len(llm.singles) != 0 {
		t.Errorf("unexpected individual requests: %v", llm.singles)
	}
}

func TestTranslateWithContext_SendsPromptAndBlock(t *testing.T) {
	var got Params
	adapter := AdapterFunc(func(ctx context.Context, p Params) (string, error) {
		got = p
		return "[TRANSLATE_0]Eins[/TRANSLATE_0]\n[TRANSLATE_1]Zwei[/TRANSLATE_1]", nil
	})
	tr := NewTranslator(adapterMap{MethodOpenAI: adapter})

	out, err := tr.TranslateLines(context.Background(), []string{"One", "Two"}, contextConfig(10), WithDocumentType(DocumentMarkdown))
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != "Eins" || out[1] != "Zwei" {
		t.Errorf("out = %q", out)
	}
	if !strings.HasPrefix(got.Text, "[TRANSLATE_0]One[/TRANSLATE_0]") {
		t.Errorf("text should be the marker block, got %q", got.Text)
	}
	if !strings.Contains(got.UserPrompt, got.Text) {
		t.Errorf("user prompt should carry the block: %q", got.UserPrompt)
	}
	if !strings.Contains(got.UserPrompt, "You MUST translate ALL 2 lines") {
		t.Errorf("user prompt misses the batch requirements: %q", got.UserPrompt)
	}
}

func TestTranslateWithContext_ShrinksWindow(t *testing.T) {
	// Slot 0 goes missing in every batch larger than the minimum window
	llm := &fakeLLM{drop: func(n, k int) bool { return n > minContextWindow && k == 0 }}
	tr := NewTranslator(adapterMap{MethodOpenAI: llm})

	lines := numberedLines(20)
	out, err := tr.TranslateLines(context.Background(), lines, contextConfig(20), WithDocumentType(DocumentGeneric))
	if err != nil {
		t.Fatalf("TranslateLines failed: %v", err)
	}
	if out[0] != "DE:line 0" {
		t.Errorf("out[0] = %q", out[0])
	}
	if want := []int{20, 10, 5}; fmt.Sprint(llm.batches) != fmt.Sprint(want) {
		t.Errorf("batches = %v, want %v", llm.batches, want)
	}
	if len(llm.singles) != 0 {
		t.Errorf("no individual fallback expected, got %v", llm.singles)
	}
}

func TestTranslateWithContext_IndividualFallback(t *testing.T) {
	// Every slot is dropped, so all batches come back empty
	llm := &fakeLLM{drop: func(n, k int) bool { return true }}
	tr := NewTranslator(adapterMap{MethodOpenAI: llm})

	lines := numberedLines(6)
	out, err := tr.TranslateLines(context.Background(), lines, contextConfig(6), WithDocumentType(DocumentSubtitle))
	if err != nil {
		t.Fatalf("TranslateLines failed: %v", err)
	}
	for i, line := range out {
		if line != "DE:"+lines[i] {
			t.Errorf("out[%d] = %q", i, line)
		}
	}
	// 6 → 5 then the window is at its minimum
	if want := []int{6, 5}; fmt.Sprint(llm.batches) != fmt.Sprint(want) {
		t.Errorf("batches = %v, want %v", llm.batches, want)
	}
	if len(llm.singles) != 6 {
		t.Errorf("individual requests = %d, want 6", len(llm.singles))
	}
}

func TestTranslateWithContext_BatchErrorFallsBack(t *testing.T) {
	llm := &fakeLLM{batchErr: NewProviderError(MethodOpenAI, 500, "upstream error", nil)}
	tr := NewTranslator(adapterMap{MethodOpenAI: llm})

	lines := numberedLines(3)
	out, err := tr.TranslateLines(context.Background(), lines, contextConfig(10), WithDocumentType(DocumentSubtitle))
	if err != nil {
		t.Fatalf("TranslateLines failed: %v", err)
	}
	if out[2] != "DE:line 2" {
		t.Errorf("out = %q", out)
	}
	if len(llm.batches) != 1 {
		t.Errorf("a failed batch should not shrink, got %v", llm.batches)
	}
}

func TestTranslateWithContext_AuthAborts(t *testing.T) {
	llm := &fakeLLM{batchErr: NewProviderError(MethodOpenAI, 401, "Unauthorized", nil)}
	tr := NewTranslator(adapterMap{MethodOpenAI: llm})

	_, err := tr.TranslateLines(context.Background(), numberedLines(30), contextConfig(10), WithDocumentType(DocumentSubtitle))
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
	if StatusCode(err) != 401 {
		t.Errorf("StatusCode = %d, want 401", StatusCode(err))
	}
	if len(llm.batches) != 1 || len(llm.singles) != 0 {
		t.Errorf("requests after abort: batches=%v singles=%v", llm.batches, llm.singles)
	}
}

func TestTranslateWithContext_PrefillsAndCaches(t *testing.T) {
	llm := &fakeLLM{}
	cache := newMapCache()
	tr := NewTranslator(adapterMap{MethodOpenAI: llm}, WithCache(cache))
	cfg := contextConfig(10)
	ctx := context.Background()

	suffix := cfg.CacheSuffix()
	cache.Set(ctx, CacheKey("Hello", suffix), "Hallo")

	lines := []string{"00:00:01,000 --> 00:00:02,000", "Hello", "World", ""}
	out, err := tr.TranslateLines(ctx, lines, cfg, WithDocumentType(DocumentSubtitle))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{lines[0], "Hallo", "DE:World", ""}
	if fmt.Sprint(out) != fmt.Sprint(want) {
		t.Errorf("out = %q, want %q", out, want)
	}
	if v, ok := cache.Get(ctx, CacheKey("World", suffix)); !ok || v != "DE:World" {
		t.Errorf("batch line not cached: %q %v", v, ok)
	}

	// A second run is served entirely from the cache
	before := len(llm.batches)
	if _, err := tr.TranslateLines(ctx, lines, cfg, WithDocumentType(DocumentSubtitle)); err != nil {
		t.Fatal(err)
	}
	if len(llm.batches) != before {
		t.Errorf("second run sent %d batches", len(llm.batches)-before)
	}
}
