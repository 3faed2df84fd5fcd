package langsync

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// StoreResult describes what a reconciliation did to one locale store.
type StoreResult struct {
	Path    string
	Locale  string
	Keys    int
	Added   int
	Updated int
	Written bool
	// Skipped is set when the store failed to load and was left untouched.
	Skipped bool
	Err     error
}

type Report struct {
	UsageCount int
	Missing    []UsageRecord
	Added      int
	Stores     []StoreResult
	ReportOnly bool
	Overwrite  bool
	Sorted     bool
}

// Failed reports whether any store could not be read, parsed or written.
func (r *Report) Failed() bool {
	for _, s := range r.Stores {
		if s.Err != nil {
			return true
		}
	}
	return false
}

func (r *Report) Errors() []error {
	var errs []error
	for _, s := range r.Stores {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Updated returns the number of existing values replaced in overwrite mode.
func (r *Report) Updated() int {
	n := 0
	for _, s := range r.Stores {
		n += s.Updated
	}
	return n
}

func (r *Report) written() []string {
	var paths []string
	for _, s := range r.Stores {
		if s.Written {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

// WriteTo renders the human readable report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	switch {
	case r.UsageCount == 0:
		fmt.Fprintln(&b, "No lookup usages found.")
	case len(r.Missing) == 0:
		fmt.Fprintf(&b, "No missing keys. All keys present in all %d locale stores.\n", len(r.Stores))
	default:
		if len(r.Missing) > 0 {
			fmt.Fprintln(&b, "Missing keys:")
			for _, rec := range r.Missing {
				fmt.Fprintf(&b, "- %s: %q\n", rec.Key, rec.Default)
			}
		}
		if !r.ReportOnly {
			r.writeOutcome(&b)
		}
	}
	for _, s := range r.Stores {
		switch {
		case s.Skipped:
			fmt.Fprintf(&b, "Skipped %s: %v\n", s.Path, s.Err)
		case s.Err != nil:
			fmt.Fprintf(&b, "Failed %s: %v\n", s.Path, s.Err)
		}
	}
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

func (r *Report) writeOutcome(b *bytes.Buffer) {
	written := r.written()
	if len(written) == 0 {
		fmt.Fprintln(b, "No locale store was written.")
		return
	}
	if r.Added > 0 {
		fmt.Fprintf(b, "Added %d keys to %s.\n", r.Added, joinAnd(written))
	}
	if r.Overwrite {
		fmt.Fprintf(b, "Overwrote %d existing values with the current defaults.\n", r.Updated())
	}
	if r.Sorted {
		fmt.Fprintln(b, "Files were written with keys sorted.")
	}
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
