package test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MockContext is a mutable context used to switch the request language
// between lookups.
type MockContext struct {
	Ctx context.Context
}

func (ctx *MockContext) SetValue(key interface{}, value interface{}) {
	ctx.Ctx = context.WithValue(ctx.Ctx, key, value)
}

func (ctx *MockContext) Deadline() (time.Time, bool) {
	return ctx.Ctx.Deadline()
}

func (ctx *MockContext) Done() <-chan struct{} {
	return ctx.Ctx.Done()
}

func (ctx *MockContext) Err() error {
	return ctx.Ctx.Err()
}

func (ctx *MockContext) Value(key interface{}) interface{} {
	return ctx.Ctx.Value(key)
}

// Tree is a set of files keyed by slash-separated path relative to a root.
type Tree map[string]string

// Write creates every file of the tree under root. Files are written in
// lexical path order.
func (t Tree) Write(root string) error {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, []byte(t[p]), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ReadString returns the content of root/p, or "" when it cannot be read.
func ReadString(root string, p string) string {
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	if err != nil {
		return ""
	}
	return string(b)
}
