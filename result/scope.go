// SPDX-License-Identifier: MIT
package result

// Scope attaches a set of key-value pairs to every Entry appended to its
// Result for as long as the Scope is open. Scopes nest: opening a second
// Scope while the first is open layers its fields on top (later scope wins
// on key collision), and closing the inner scope leaves the outer one in
// effect.
//
// Usage:
//
//	sc := r.OpenScope(map[string]any{"module": path})
//	defer sc.Close()
//	r.Errorf("E11", "unknown type %s", name) // Fields carries "module"
type Scope struct {
	r     *Result
	depth int
}

// OpenScope pushes kv onto r's scope stack and returns a handle to pop it.
// Closing scopes out of order truncates the stack back to the given
// depth, so a caller that forgets to Close an inner scope before closing
// an outer one still leaves the stack consistent.
func (r *Result) OpenScope(kv map[string]any) *Scope {
	r.scopes = append(r.scopes, kv)
	return &Scope{r: r, depth: len(r.scopes)}
}

// Close pops sc and every scope opened after it.
func (sc *Scope) Close() {
	if sc == nil || sc.r == nil {
		return
	}
	if len(sc.r.scopes) >= sc.depth {
		sc.r.scopes = sc.r.scopes[:sc.depth-1]
	}
}
