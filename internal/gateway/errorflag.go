package gateway

import (
	"sync/atomic"

	"github.com/gestaolite/backoffice/internal"
)

// ErrorFlag is the process-wide fatal error banner state. The first failure
// wins: concurrent callbacks racing to report a connection problem must not
// make the banner flicker, so Set only succeeds while the flag is unset.
type ErrorFlag struct {
	current atomic.Pointer[internal.AppError]
}

func NewErrorFlag() *ErrorFlag {
	return &ErrorFlag{}
}

// Set installs err only if no error is currently set. Returns true when err
// became the active banner error.
func (f *ErrorFlag) Set(err *internal.AppError) bool {
	if err == nil {
		return false
	}
	return f.current.CompareAndSwap(nil, err)
}

// Get returns the active banner error, or nil.
func (f *ErrorFlag) Get() *internal.AppError {
	return f.current.Load()
}

// Reset clears the flag. Called when a new session starts.
func (f *ErrorFlag) Reset() {
	f.current.Store(nil)
}
