// Package dialogue hosts the Starlark script runtime that consumes the
// variable store. Scripts read and write typed variables through a
// small builtin surface (get, set, has, clear, vars); the runtime owns
// the store for its lifetime and bounds each run with a timeout. Every
// run is tagged with a session id that flows through logs, metrics and
// trace spans.
package dialogue
