// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes
// through catalog parsing and the by-value analysis. Their goal is to guard
// against panics and non-terminating resolution (alias cycles, deep chains).
//
// Seeds come from testdata/catalogs plus a few hand-written edge cases.
package fuzztests
