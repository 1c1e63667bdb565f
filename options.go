package mst

import "github.com/rs/zerolog"


//============================================= Options


// Options configures a Tree, in the shape of the teacher's MariOpts: a
// single plain struct passed by value rather than functional options,
// since this is an embedded library with a handful of knobs, not a
// service with a growing configuration surface.
type Options struct {
	// Path is the backing file's filesystem path. Ignored by
	// NewTemporary, which generates its own path in a temp directory.
	Path string

	// NodePoolSize bounds (in KiB) the largest serialization buffer the
	// internal buffer pool will retain for reuse. Zero selects a
	// reasonable default.
	NodePoolSize int64

	// Logger receives structured diagnostics for corruption (a failed
	// node decode, content-hash or magic check) and header version
	// mismatches. I/O failures are returned as IOError and are not
	// logged. The zero value (zerolog.Nop()) is silent.
	Logger zerolog.Logger
}
