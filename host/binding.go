package host

import (
	"context"
	"sort"
	"sync"
)

const CounterBindingName = "counter"

type Binding interface {
	BindingName() string
}

type Bindings struct {
	lk      sync.RWMutex
	entries map[string]Binding
}

func NewBindings(bindings ...Binding) *Bindings {
	b := &Bindings{entries: make(map[string]Binding, len(bindings))}
	for _, binding := range bindings {
		b.Register(binding)
	}

	return b
}

// Register adds binding, replacing any binding already registered under the
// same name.
func (b *Bindings) Register(binding Binding) {
	b.lk.Lock()
	defer b.lk.Unlock()

	b.entries[binding.BindingName()] = binding
}

func (b *Bindings) Lookup(name string) (Binding, error) {
	b.lk.RLock()
	defer b.lk.RUnlock()

	binding, ok := b.entries[name]
	if !ok {
		return nil, &BindingNotFoundError{Name: name}
	}

	return binding, nil
}

func (b *Bindings) Names() []string {
	b.lk.RLock()
	defer b.lk.RUnlock()

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func LookupAs[B Binding](bindings *Bindings, name string) (B, error) {
	var typed B

	binding, err := bindings.Lookup(name)
	if err != nil {
		return typed, err
	}

	typed, ok := binding.(B)
	if !ok {
		return typed, &BindingTypeError{Name: name, Binding: binding}
	}

	return typed, nil
}

type CounterBinding struct {
	Name    string
	Factory CounterFactory
}

func NewCounterBinding(factory CounterFactory) *CounterBinding {
	return &CounterBinding{Name: CounterBindingName, Factory: factory}
}

func (b *CounterBinding) BindingName() string {
	return b.Name
}

func (b *CounterBinding) CreateObject(ctx context.Context, initial int) (Counter, error) {
	return b.Factory(ctx, initial)
}
