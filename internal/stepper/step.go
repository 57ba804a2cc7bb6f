// Package stepper drives an ordered, resumable walk over a fixed sequence of
// steps, either by hand (next, previous, reset) or automatically on a ticker.
package stepper

// Step guards and performs one forward transition.
// Validate must not mutate state. Commit runs once per successful transition.
type Step interface {
	Validate() error
	Commit()
}

// Funcs adapts plain functions to Step. Nil fields always pass / do nothing.
type Funcs struct {
	ValidateFunc func() error
	CommitFunc   func()
}

func (f Funcs) Validate() error {
	if f.ValidateFunc == nil {
		return nil
	}
	return f.ValidateFunc()
}

func (f Funcs) Commit() {
	if f.CommitFunc != nil {
		f.CommitFunc()
	}
}

// Sequence is a fixed-length ordered list of steps.
// Step(i) guards the move from cursor i to i+1.
type Sequence interface {
	Len() int
	Step(i int) Step
}

// Steps is a slice-backed Sequence.
type Steps []Step

func (s Steps) Len() int        { return len(s) }
func (s Steps) Step(i int) Step { return s[i] }

// Count is a Sequence of n steps that always pass, used for reveal animations.
type Count int

func (c Count) Len() int    { return int(c) }
func (Count) Step(int) Step { return Funcs{} }
