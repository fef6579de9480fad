// Package diag defines the diagnostic model shared by catalog loading, the
// by-value analysis, and the CLI.
//
// A Diagnostic names the type it is about (Subject), a stable Code, a
// Severity and a message. Notes walk secondary context, typically the causal
// chain of an unsafe verdict, one note per dependent type.
//
// Producers emit through a Reporter. BagReporter collects into a Bag, which
// caps the number of diagnostics and sorts them deterministically. Package
// diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
