// Package logging wraps zap to give swarmlistd a single structured
// logger construction point. The teacher declares go.uber.org/zap in
// go.mod but never imports it; this package puts that dependency to
// actual use in place of the teacher's bare log.Printf calls.
// cmd/swarmsim does not use it and logs through the standard log package.
package logging

import "go.uber.org/zap"

// New builds a production zap.Logger, or a development one when debug
// is true (human-readable console encoding instead of JSON).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New, panicking on error. Used at process start, where a
// logger that can't be constructed is a fatal configuration error
// anyway (spec section 7: "configuration errors at init are fatal").
func Must(debug bool) *zap.Logger {
	l, err := New(debug)
	if err != nil {
		panic(err)
	}
	return l
}
