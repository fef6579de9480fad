// Package knowntypes holds the compiled-in facts about primitive and
// standard-library types that the by-value analysis starts from.
package knowntypes

import "byval/internal/typename"

// Entry is one known type and whether it may be held by value.
type Entry struct {
	Name        typename.Name
	ByValueSafe bool
}

type known struct {
	foreign     string // spelling in the foreign headers
	bridged     string // spelling on the generated side, "" if none
	byValueSafe bool
}

// Owning strings and vectors keep self-referential or heap-owning internals,
// so they must stay behind a handle. Smart pointers are a single pointer and
// are fine to move.
var table = []known{
	{"bool", "", true},
	{"int8_t", "i8", true},
	{"int16_t", "i16", true},
	{"int32_t", "i32", true},
	{"int64_t", "i64", true},
	{"uint8_t", "u8", true},
	{"uint16_t", "u16", true},
	{"uint32_t", "u32", true},
	{"uint64_t", "u64", true},
	{"intptr_t", "isize", true},
	{"uintptr_t", "usize", true},
	{"size_t", "", true},
	{"float", "f32", true},
	{"double", "f64", true},
	{"char", "c_char", true},
	{"std::unique_ptr", "cxx::UniquePtr", true},
	{"std::shared_ptr", "cxx::SharedPtr", true},
	{"rust::String", "String", true},
	{"rust::Str", "str", true},
	{"std::string", "CxxString", false},
	{"std::vector", "CxxVector", false},
}

// PodSafeTypes lists every known spelling with its verdict, in table order.
// Foreign and bridged spellings of the same type are both present.
func PodSafeTypes() []Entry {
	out := make([]Entry, 0, 2*len(table))
	for _, k := range table {
		out = append(out, Entry{Name: typename.Parse(k.foreign), ByValueSafe: k.byValueSafe})
		if k.bridged != "" {
			out = append(out, Entry{Name: typename.Parse(k.bridged), ByValueSafe: k.byValueSafe})
		}
	}
	return out
}
