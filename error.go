package langsync

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPattern = errors.New("invalid lookup pattern")
	ErrMalformedStore = errors.New("malformed locale store")
)

// StoreError is the error type reported for a single locale store. It never
// aborts a reconciliation; the remaining stores are still processed.
type StoreError interface {
	Error() string
	Unwrap() error
	Op() string   // "read", "parse" or "write"
	Path() string // store file path
}

type DefaultStoreError struct {
	err  error
	op   string
	path string
}

func (se DefaultStoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", se.op, se.path, se.err)
}

func (se *DefaultStoreError) Unwrap() error {
	return se.err
}

func (se *DefaultStoreError) Op() string {
	return se.op
}

func (se *DefaultStoreError) Path() string {
	return se.path
}

func newStoreError(op string, path string, err error) error {
	return &DefaultStoreError{op: op, path: path, err: err}
}
