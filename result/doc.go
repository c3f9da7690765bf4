// Package result provides Chigraph's structured diagnostic accumulator.
//
// Every fallible core operation — validation, node compilation, function
// compilation, module compilation — returns a Result instead of throwing or
// returning a bare error. A Result is an append-only sequence of Entry
// values, each carrying a letter-severity Code, a short Overview, and an
// optional Data payload. Results compose with Merge: two Results
// concatenate their entries and merge their open scopes both ways, so
// a deep call chain can accumulate precise provenance without ever needing
// to unwind with a panic or an error wrapper chain.
//
// Design contract (strict, matching the rest of Chigraph's ambient style):
//   - Code is always a single uppercase letter ('E', 'W', or 'I') followed by
//     digits. Success() reports false the moment one 'E' entry is added.
//   - Context values are scopes: OpenScope attaches a set of key-value
//     pairs that is copied onto every Entry added through that scope for as
//     long as it is open. Scopes nest; Merge combines two Results' open
//     scopes so a deeper call's context is visible on entries added by a
//     shallower caller after the merge.
//   - Result is used through a pointer (*Result); its entry slice is
//     append-only, and an entry is never modified after it is added.
package result
