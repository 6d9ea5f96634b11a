package compose

import "errors"

// Fatal pre- and post-invocation conditions. Missing materials, prerender
// failures and multipass failures are deliberately not errors at this
// boundary: they degrade (skip, inline fallback, monolithic fallback)
// instead of aborting the export.
var (
	// ErrEmptyGraph means synthesis produced no terminal output to render,
	// detected before the engine is ever invoked.
	ErrEmptyGraph = errors.New("empty compositing graph: timeline has no renderable segments")

	// ErrOutputMissing means the engine reported success but left no
	// artifact behind.
	ErrOutputMissing = errors.New("engine reported success but output file is missing")
)
