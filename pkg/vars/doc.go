// Package vars provides the persistent typed variable store backing the
// dialogue runtime. Variables map a string name to exactly one of a
// text, number, or boolean value, stored in SQLite with one table per
// kind. A name may hold only one kind at a time; writing a different
// kind fails with a type-conflict error and leaves the original value
// in place. The check-then-write runs inside a single transaction, so
// the one-kind-per-name invariant holds under concurrent writers.
package vars
