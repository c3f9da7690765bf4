// SPDX-License-Identifier: MIT
package result

import "fmt"

// Severity is the single-letter class of an Entry's Code.
type Severity byte

const (
	// SeverityError marks a diagnostic that flips Success() to false.
	SeverityError Severity = 'E'
	// SeverityWarning marks a non-fatal diagnostic.
	SeverityWarning Severity = 'W'
	// SeverityInfo marks an informational diagnostic, generally attached
	// by a Scope rather than raised directly.
	SeverityInfo Severity = 'I'
)

// Entry is one diagnostic appended to a Result.
//
// Code carries the taxonomy from spec §7 (e.g. "E30" for an asymmetric
// connection). Overview is a short human-readable summary. Data is an
// optional structured payload (the CLI prints it indented beneath
// Overview). Fields records the key-value pairs contributed by every
// Scope that was open when the Entry was appended.
type Entry struct {
	Code     string
	Overview string
	Data     any
	Fields   map[string]any
}

// Severity returns the first byte of Code as a Severity.
func (e Entry) Severity() Severity {
	if len(e.Code) == 0 {
		return SeverityInfo
	}
	return Severity(e.Code[0])
}

// Result is an append-only accumulator of diagnostic Entry values.
//
// The zero value is a usable empty Result. Result is not safe for
// concurrent writers; Chigraph's core is single-threaded per spec §5, so
// this is never an issue in practice.
type Result struct {
	entries []Entry
	scopes  []map[string]any
}

// New returns an empty, successful Result.
func New() *Result {
	return &Result{}
}

// Entries returns the accumulated entries in append order. The returned
// slice must not be mutated by the caller.
func (r *Result) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Success reports whether no SeverityError entry has been appended.
func (r *Result) Success() bool {
	if r == nil {
		return true
	}
	for _, e := range r.entries {
		if e.Severity() == SeverityError {
			return false
		}
	}
	return true
}

// activeFields flattens the currently open scopes into one map, later
// scopes overriding earlier ones on key collision.
func (r *Result) activeFields() map[string]any {
	if len(r.scopes) == 0 {
		return nil
	}
	merged := make(map[string]any)
	for _, s := range r.scopes {
		for k, v := range s {
			merged[k] = v
		}
	}
	return merged
}

// add appends one Entry, stamping it with the currently active scopes.
func (r *Result) add(code, overview string, data any) {
	r.entries = append(r.entries, Entry{
		Code:     code,
		Overview: overview,
		Data:     data,
		Fields:   r.activeFields(),
	})
}

// Add appends an entry with the given code/overview/data, stamped with
// the active scope Fields.
func (r *Result) Add(code, overview string, data any) *Result {
	r.add(code, overview, data)
	return r
}

// Errorf appends a SeverityError entry (code must start with 'E').
func (r *Result) Errorf(code, format string, args ...any) *Result {
	r.add(code, fmt.Sprintf(format, args...), nil)
	return r
}

// ErrorData appends a SeverityError entry carrying a structured payload.
func (r *Result) ErrorData(code, overview string, data any) *Result {
	r.add(code, overview, data)
	return r
}

// Warnf appends a SeverityWarning entry.
func (r *Result) Warnf(code, format string, args ...any) *Result {
	r.add(code, fmt.Sprintf(format, args...), nil)
	return r
}

// Infof appends a SeverityInfo entry.
func (r *Result) Infof(code, format string, args ...any) *Result {
	r.add(code, fmt.Sprintf(format, args...), nil)
	return r
}

// Merge appends other's entries onto r, in order, and folds other's
// currently open scopes into r's (and r's into other's, since other is
// conventionally discarded by the caller right after Merge — this makes
// the merge commutative in the one case that matters: a sub-call's Result
// merged into its caller's carries both sides' provenance on every entry
// contributed from that point on).
func (r *Result) Merge(other *Result) *Result {
	if other == nil {
		return r
	}
	r.entries = append(r.entries, other.entries...)
	for _, s := range other.scopes {
		r.scopes = append(r.scopes, s)
	}
	other.scopes = append(other.scopes, r.scopes...)
	return r
}

// Combine folds a sequence of Results into one fresh Result, left to right.
func Combine(results ...*Result) *Result {
	out := New()
	for _, r := range results {
		out.Merge(r)
	}
	return out
}
