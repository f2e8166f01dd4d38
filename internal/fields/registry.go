package fields

import "fmt"

// Entry binds a field name to its kind and the backend handle created for it.
type Entry[H any] struct {
	Kind   Kind
	Handle H
}

// Registry is the per-session field table. It is not safe for concurrent use;
// a generation session owns exactly one.
type Registry[H any] struct {
	entries  map[string]Entry[H]
	reserved map[string]Kind
	order    []string
}

func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{
		entries:  make(map[string]Entry[H]),
		reserved: make(map[string]Kind),
	}
}

// Reserve claims a name before placement. A second claim on the same name fails.
func (r *Registry[H]) Reserve(name string, kind Kind) error {
	if _, taken := r.reserved[name]; taken {
		return &InvalidError{Reason: ReasonDuplicateName, Detail: fmt.Sprintf("field %q already declared", name)}
	}
	r.reserved[name] = kind
	return nil
}

// Bind records the handle for a reserved name.
func (r *Registry[H]) Bind(name string, h H) error {
	kind, ok := r.reserved[name]
	if !ok {
		return fmt.Errorf("field %q was not reserved", name)
	}
	if _, bound := r.entries[name]; bound {
		return fmt.Errorf("field %q already bound", name)
	}
	r.entries[name] = Entry[H]{Kind: kind, Handle: h}
	r.order = append(r.order, name)
	return nil
}

func (r *Registry[H]) Lookup(name string) (Entry[H], bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Len is the number of bound fields.
func (r *Registry[H]) Len() int { return len(r.entries) }

// Names returns bound names in bind order.
func (r *Registry[H]) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
