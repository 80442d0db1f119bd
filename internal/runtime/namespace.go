package runtime

// Namespace is a global binding table. The decoder installs exports into it
// only after the whole snapshot decoded cleanly.
type Namespace struct {
	bindings map[string]Value
	order    []string
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{bindings: make(map[string]Value)}
}

// Reserve pre-sizes the namespace for n additional bindings.
func (n *Namespace) Reserve(count int) {
	if n.bindings == nil {
		n.bindings = make(map[string]Value, count)
	}
}

// Set binds name to value, replacing any previous binding.
func (n *Namespace) Set(name string, v Value) {
	if _, exists := n.bindings[name]; !exists {
		n.order = append(n.order, name)
	}
	n.bindings[name] = v
}

// Get returns the binding for name.
func (n *Namespace) Get(name string) (Value, bool) {
	v, ok := n.bindings[name]
	return v, ok
}

// Len returns the number of bindings.
func (n *Namespace) Len() int {
	return len(n.bindings)
}

// Names returns binding names in insertion order.
func (n *Namespace) Names() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}
