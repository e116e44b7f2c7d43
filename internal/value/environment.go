package value

import "fmt"

// Environment is one frame of the lexical scope chain. Frames form a
// parent-linked chain; globals are the outermost frame with Enclosing
// == nil.
type Environment struct {
	Enclosing *Environment
	values    map[string]Value
}

// NewEnvironment creates a frame nested inside enclosing (nil for the
// global frame).
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{Enclosing: enclosing, values: map[string]Value{}}
}

// Define always creates (or overwrites) the binding in this frame,
// regardless of whether an enclosing frame already defines the name —
// that's how shadowing works.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

// Get resolves name against the nearest enclosing binding.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.Enclosing {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("undefined variable '%s'", name)
}

// Assign mutates the nearest binding of name, or fails if none exists.
func (e *Environment) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.Enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return nil
		}
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// ancestor walks up `distance` frames. If the chain runs out early it
// returns the last frame reached.
//
// GetAt/AssignAt below deliberately fall back through ancestor() and
// then through Get/Assign's own enclosing-frame walk, rather than
// failing outright when the exact frame lacks the name — a resolved
// distance can undershoot when a variable is declared after the
// closure that captures it, and falling back keeps that case working
// instead of turning it into a runtime error.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env.Enclosing != nil; i++ {
		env = env.Enclosing
	}
	return env
}

// GetAt looks up name starting at `distance` frames up, falling back to
// enclosing frames if not found there (see ancestor's doc comment).
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	return e.ancestor(distance).Get(name)
}

// AssignAt mirrors GetAt for assignment.
func (e *Environment) AssignAt(distance int, name string, v Value) error {
	return e.ancestor(distance).Assign(name, v)
}
