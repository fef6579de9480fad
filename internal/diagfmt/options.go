package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Width     int // maximum subject width, 0 - unlimited
	ShowNotes bool
	ShowInfo  bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // output cut-off, the Bag keeps everything
	IncludeNotes bool
	IncludeInfo  bool
}

// TableOpts configures the verdict table.
type TableOpts struct {
	Color bool
	Width int // total line width, 0 - 100
}
