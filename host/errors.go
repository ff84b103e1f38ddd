package host

import "fmt"

type BindingNotFoundError struct {
	Name string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("no such binding: %s", e.Name)
}

type BindingTypeError struct {
	Name    string
	Binding Binding
}

func (e *BindingTypeError) Error() string {
	return fmt.Sprintf("binding %s has unexpected type %T", e.Name, e.Binding)
}
