package runtime

// Heap owns entity allocation and collection notifications.
//
// The Go runtime does not move allocations, so a "collection" here never
// relocates entities. The epilogue callback contract is kept anyway: code
// that caches raw views into heap-owned storage registers a callback and
// re-derives those views after every collection, exactly as it would under
// a moving collector. CollectEvery lets tests force collections in the
// middle of reconstruction.
type Heap struct {
	epilogue map[int]func()
	nextID   int

	// CollectEvery triggers a synthetic collection every n allocations
	// when n > 0. Test hook.
	CollectEvery int

	allocs      int
	collections int

	emptyShape *Shape
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{epilogue: make(map[int]func())}
}

// AddGCEpilogueCallback registers fn to run after every collection and
// returns a handle for removal.
func (h *Heap) AddGCEpilogueCallback(fn func()) int {
	id := h.nextID
	h.nextID++
	h.epilogue[id] = fn
	return id
}

// RemoveGCEpilogueCallback unregisters a callback by handle.
func (h *Heap) RemoveGCEpilogueCallback(id int) {
	delete(h.epilogue, id)
}

// Collect runs a collection cycle and invokes every epilogue callback.
func (h *Heap) Collect() {
	h.collections++
	for _, fn := range h.epilogue {
		fn()
	}
}

// Collections returns the number of collection cycles run so far.
func (h *Heap) Collections() int {
	return h.collections
}

func (h *Heap) allocated() {
	h.allocs++
	if h.CollectEvery > 0 && h.allocs%h.CollectEvery == 0 {
		h.Collect()
	}
}

// NewString allocates a string entity with the given text.
func (h *Heap) NewString(text string) *String {
	h.allocated()
	return &String{Bytes: []byte(text)}
}

// NewStringBytes allocates a string entity owning b.
func (h *Heap) NewStringBytes(b []byte) *String {
	h.allocated()
	return &String{Bytes: b}
}

// EmptyShape returns the canonical shape with no keys and the default
// prototype. All zero-property objects share it.
func (h *Heap) EmptyShape() *Shape {
	if h.emptyShape == nil {
		h.allocated()
		h.emptyShape = &Shape{}
	}
	return h.emptyShape
}

// NewShape allocates a shape with the given keys and prototype (nil means
// the default prototype).
func (h *Heap) NewShape(keys []ShapeKey, proto *Object) *Shape {
	h.allocated()
	return &Shape{Keys: keys, Proto: proto}
}

// NewObject allocates an object over shape. Props must match the shape's
// key count; a nil props slice allocates undefined-filled slots.
func (h *Heap) NewObject(shape *Shape, props []Value) *Object {
	h.allocated()
	if props == nil {
		props = make([]Value, len(shape.Keys))
	}
	return &Object{Shape: shape, Props: props}
}

// NewArray allocates a packed array owning elems.
func (h *Heap) NewArray(elems []Value) *Array {
	h.allocated()
	return &Array{Elems: elems}
}

// NewScopeLayout builds a context layout descriptor.
func (h *Heap) NewScopeLayout(kind ContextKind, hasParent bool, names []*String) *ScopeLayout {
	h.allocated()
	return &ScopeLayout{Kind: kind, HasParent: hasParent, Names: names}
}

// NewContext allocates a context from its layout. The slot values start
// undefined and are filled by the caller.
func (h *Heap) NewContext(layout *ScopeLayout, parent *Context) *Context {
	h.allocated()
	return &Context{
		Kind:   layout.Kind,
		Parent: parent,
		Names:  layout.Names,
		Slots:  make([]Value, len(layout.Names)),
	}
}

// NewScript allocates a script entity for the given source text.
func (h *Heap) NewScript(source string) *Script {
	h.allocated()
	return &Script{Source: source}
}

// NewFunction allocates a function entity.
func (h *Heap) NewFunction(kind FunctionKind, context *Context, script *Script, start, length, paramCount int) *Function {
	h.allocated()
	return &Function{
		Kind:       kind,
		Context:    context,
		Script:     script,
		Start:      start,
		Length:     length,
		ParamCount: paramCount,
	}
}

// NewRegexp allocates a regexp entity.
func (h *Heap) NewRegexp(pattern, flags *String) *Regexp {
	h.allocated()
	return &Regexp{Pattern: pattern, Flags: flags}
}
