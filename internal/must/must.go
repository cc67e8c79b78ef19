// Package must provides helper functions to assert program invariants.
// The program will panic if an invariant is violated.
//
// Use it only for data the program ships with,
// such as embedded fonts,
// where a failure is a build defect and not a user error.
package must

import "fmt"

// panicf panics with the printf-style message.
func panicf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

// NotErrorf panics with the given message if the error is not nil.
func NotErrorf(err error, format string, args ...any) {
	if err != nil {
		panicf("unexpected error: %v\n%v", err, fmt.Sprintf(format, args...))
	}
}

// Get returns v if err is nil, and panics with the given message otherwise.
//
//	face := must.Get(truetype.Parse(data))("parse %v", name)
func Get[T any](v T, err error) func(format string, args ...any) T {
	return func(format string, args ...any) T {
		NotErrorf(err, format, args...)
		return v
	}
}
