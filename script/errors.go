package script

import "fmt"

// Error reports a failure raised while evaluating a script, including
// uncaught JavaScript exceptions and interrupts.
type Error struct {
	Script string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
