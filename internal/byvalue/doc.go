// Package byvalue decides which declared foreign types may be held by value
// (copied, moved, embedded inline) instead of behind an opaque handle.
//
// A run has three steps over one Store:
//
//   - Seed fills the store from the known-type table.
//   - Ingest turns declarations into records, judging each struct against
//     the store as it is at that moment. Blocklisted names are applied first.
//   - Confirm walks the requested types and their field types with a LIFO
//     worklist, promoting candidates to Confirmed or failing with the first
//     unsafe type found.
//
// IsConfirmedSafe is the only query code generators should rely on; anything
// short of Confirmed is treated as unsafe.
//
// Two orderings are part of the contract. Ingestion is order sensitive: a
// struct whose field type is declared later stays unsafe, and a struct
// declared after a blocklist entry of the same name replaces it. Confirm pops
// the most recently pushed type first, which decides which failure is
// reported when several exist.
package byvalue
