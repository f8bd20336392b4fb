// Package clock provides a tiny time abstraction.
//
// The challenge lifecycle is entirely about "now" versus a stored expiry, so
// business code depends on the Clocker interface instead of calling time.Now()
// directly. Tests swap in a manual clock to exercise expiry deterministically.
package clock
