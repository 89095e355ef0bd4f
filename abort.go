package linetl

import (
	"context"
	"sync/atomic"
)

// AbortState is the cancellation token shared by every unit of work in one run.
// It moves from running to aborted once and never back.
type AbortState struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	aborted atomic.Bool
}

// NewAbortState derives a run token from parent. Cancelling parent aborts the run.
func NewAbortState(parent context.Context) *AbortState {
	ctx, cancel := context.WithCancelCause(parent)
	return &AbortState{ctx: ctx, cancel: cancel}
}

// Abort cancels the run with cause. Only the first call has an effect.
func (a *AbortState) Abort(cause error) {
	if a.aborted.CompareAndSwap(false, true) {
		if cause == nil {
			cause = ErrAborted
		}
		a.cancel(cause)
	}
}

// Aborted reports whether the run was aborted or its parent context ended.
func (a *AbortState) Aborted() bool {
	return a.aborted.Load() || a.ctx.Err() != nil
}

// Err returns an *AbortedError carrying the abort cause, or nil while running.
func (a *AbortState) Err() error {
	if !a.Aborted() {
		return nil
	}
	return &AbortedError{Cause: context.Cause(a.ctx)}
}

// Context returns the run context. It is done once the run is aborted.
func (a *AbortState) Context() context.Context {
	return a.ctx
}

// Done is closed when the run is aborted.
func (a *AbortState) Done() <-chan struct{} {
	return a.ctx.Done()
}

// Release frees the context resources. Call it when the run finishes.
func (a *AbortState) Release() {
	a.cancel(context.Canceled)
}
