// Package ffi is the extern symbol registry that binds names declared
// with `extern` in Kaleidoscope source to Go functions the engine can
// actually call (spec.md §4.4). Grounded on original_source/externs.rs's
// FfiRegistry, which maps a symbol name to a native function pointer;
// here a name maps to a variadic float64 Go func so one registry entry
// can serve externs of any declared arity instead of needing one Go type
// per arity.
package ffi

import (
	"fmt"
	"os"
)

// Fn is the shape every registered extern symbol must implement: a
// function taking the call's arguments as a slice of float64s and
// returning a single float64.
type Fn func(args []float64) float64

// Registry holds the extern symbols available to a running program.
type Registry struct {
	fns map[string]Fn
}

// NewRegistry returns a registry seeded with Kaleidoscope's two
// conventional tutorial externs, putchard and printd.
func NewRegistry() *Registry {
	r := &Registry{fns: map[string]Fn{}}
	r.Register("putchard", func(args []float64) float64 {
		fmt.Fprintf(os.Stdout, "%c", byte(args[0]))
		return 0
	})
	r.Register("printd", func(args []float64) float64 {
		fmt.Fprintf(os.Stdout, "%g\n", args[0])
		return 0
	})
	return r
}

// Register binds name to fn, overwriting any prior binding. Used both
// for the seeded tutorial externs and for tests that need a stub.
func (r *Registry) Register(name string, fn Fn) {
	r.fns[name] = fn
}

// Lookup returns the function bound to name, if any.
func (r *Registry) Lookup(name string) (Fn, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}
