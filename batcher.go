package linetl

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	maxContextPadding = 25
	maxContextRetries = 2 // times a batch may shrink its window
	minContextWindow  = 5
)

// ContextPadding returns how many neighbouring lines are shown on each side
// of a batch of size window.
func ContextPadding(window int) int {
	return min(maxContextPadding, max(1, window/2))
}

// BuildContextBlock marks lines[start:end] for translation and surrounds
// them with up to ContextPadding(window) context lines on each side.
// Target lines are numbered from 0.
func BuildContextBlock(lines []string, start, end, window int) string {
	pad := ContextPadding(window)
	ctxStart := max(0, start-pad)
	ctxEnd := min(len(lines), end+pad)

	var b strings.Builder
	for i := ctxStart; i < ctxEnd; i++ {
		if i > ctxStart {
			b.WriteByte('\n')
		}
		if i >= start && i < end {
			k := i - start
			fmt.Fprintf(&b, "[TRANSLATE_%d]%s[/TRANSLATE_%d]", k, lines[i], k)
		} else {
			b.WriteString("[CONTEXT]")
			b.WriteString(lines[i])
			b.WriteString("[/CONTEXT]")
		}
	}
	return b.String()
}

// batchTask is a pending range on the batcher's worklist.
type batchTask struct {
	start, end int
	window     int
	depth      int // how many times the window has been halved
}

// contextResult collects the lines of a context-mode run.
type contextResult struct {
	out    []string
	filled []bool
}

func (cr *contextResult) missing(start, end int) bool {
	for i := start; i < end; i++ {
		if !cr.filled[i] {
			return true
		}
	}
	return false
}

func (cr *contextResult) set(i int, text string) {
	cr.out[i] = text
	cr.filled[i] = true
}

// translateWithContext translates lines in batches that carry their
// neighbours as context. Incomplete batches are retried with smaller
// windows; lines still missing after that are translated one at a time.
func (r *run) translateWithContext(lines []string, docType DocumentType) ([]string, error) {
	n := len(lines)
	res := &contextResult{out: make([]string, n), filled: make([]bool, n)}

	for i, line := range lines {
		if !HasTranslatableText(line) {
			res.set(i, line)
		}
	}
	if r.cfg.UseCache {
		for i, cached := range PrefetchCached(r.ctx(), r.cache, lines, r.suffix) {
			if !res.filled[i] {
				res.set(i, cached)
			}
		}
	}

	window := r.cfg.ContextWindow(n)
	for start := 0; start < n; start += window {
		end := min(start+window, n)

		ok, err := r.runBatch(lines, res, start, end, window, docType)
		if err != nil {
			return nil, err
		}

		if !ok {
			r.logger.Warn("batch requires individual translation fallback",
				zap.Int("from", start+1), zap.Int("to", end))
			for j := start; j < end; j++ {
				if res.filled[j] {
					continue
				}
				translated, err := r.translate(lines[j], "")
				if err != nil {
					return nil, err
				}
				res.set(j, translated)
				r.storeLine(lines[j], translated)
				r.report(j+1, n)
				if j < end-1 {
					if err := r.sleep(r.cfg.Delay()); err != nil {
						return nil, err
					}
				}
			}
		}

		r.report(end, n)
		if end < n {
			if err := r.sleep(r.cfg.BatchDelay()); err != nil {
				return nil, err
			}
		}
	}

	for i, ok := range res.filled {
		if !ok {
			return nil, &IncompleteError{Line: i + 1}
		}
	}
	return res.out, nil
}

// runBatch drives the shrink ladder for lines[start:end]. It reports whether
// every line of the range ended up translated. Auth and abort errors are
// returned; any other failure just marks the batch as failed.
func (r *run) runBatch(lines []string, res *contextResult, start, end, window int, docType DocumentType) (bool, error) {
	stack := []batchTask{{start: start, end: end, window: window}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !res.missing(task.start, task.end) {
			continue
		}

		if err := r.sendBatch(lines, res, task, docType); err != nil {
			if IsAuthError(err) || errors.Is(err, ErrAborted) {
				return false, err
			}
			r.logger.Warn("batch translation error",
				zap.Int("from", task.start+1), zap.Int("to", task.end), zap.Error(err))
			return false, nil
		}

		if !res.missing(task.start, task.end) {
			continue
		}

		if task.depth >= maxContextRetries || task.window <= minContextWindow {
			return false, nil
		}

		newWindow := max(minContextWindow, task.window/2)
		r.logger.Warn("batch incomplete, reducing context window",
			zap.Int("from", task.start+1), zap.Int("to", task.end),
			zap.Int("window", task.window), zap.Int("new_window", newWindow))

		var subs []batchTask
		for s := task.start; s < task.end; s += newWindow {
			subs = append(subs, batchTask{
				start:  s,
				end:    min(s+newWindow, task.end),
				window: newWindow,
				depth:  task.depth + 1,
			})
		}
		// Reverse so the first sub-range is popped first
		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, subs[i])
		}
	}

	return !res.missing(start, end), nil
}

// sendBatch sends one marked-up batch and fills the slots the model answered.
func (r *run) sendBatch(lines []string, res *contextResult, task batchTask, docType DocumentType) error {
	count := task.end - task.start
	block := BuildContextBlock(lines, task.start, task.end, task.window)
	prompt := BuildContextPrompt(block, r.cfg.EffectiveUserPrompt(), count, docType)

	response, err := r.translate(block, prompt)
	if err != nil {
		return err
	}

	for j, translated := range ExtractNumbered(response, count) {
		i := task.start + j
		if translated == "" || res.filled[i] {
			continue
		}
		res.set(i, translated)
		r.storeLine(lines[i], translated)
	}
	return nil
}
