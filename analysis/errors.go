package analysis

import (
	"errors"
	"sync"
)

// errorLog keeps the errors of analyses that write their results to disk.
// Analyzers and comparators have no error return, the errors are checked once
// the comparison is done.
type errorLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *errorLog) record(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

// Err joins the recorded errors
func (l *errorLog) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.errs...)
}
