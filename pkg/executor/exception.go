package executor

import "sync/atomic"

// ExceptionHandler controls how physical execution failures are reported.
// When Thrown (the default), the first failure aborts the whole batch call.
// In tolerant mode a failed statement contributes zero outcomes instead.
type ExceptionHandler struct {
	thrown atomic.Bool
}

// NewExceptionHandler creates a handler in thrown mode.
func NewExceptionHandler() *ExceptionHandler {
	h := &ExceptionHandler{}
	h.thrown.Store(true)
	return h
}

// Thrown reports whether failures abort execution.
func (h *ExceptionHandler) Thrown() bool {
	return h.thrown.Load()
}

// SetThrown switches between abort and tolerant mode.
func (h *ExceptionHandler) SetThrown(thrown bool) {
	h.thrown.Store(thrown)
}
