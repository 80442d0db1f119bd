package runtime

// String is an owned UTF-8 byte sequence. Identity is pointer identity:
// two Strings with equal text are distinct entities unless they are the
// same allocation.
type String struct {
	Bytes []byte
}

// Text returns the string contents.
func (s *String) Text() string {
	return string(s.Bytes)
}

// PropertyAttributes describes one property's attribute triple.
type PropertyAttributes struct {
	ReadOnly     bool
	Configurable bool
	Enumerable   bool
}

// DefaultAttributes returns the implicit attribute triple: writable,
// configurable, enumerable.
func DefaultAttributes() PropertyAttributes {
	return PropertyAttributes{ReadOnly: false, Configurable: true, Enumerable: true}
}

// IsDefault reports whether a equals the implicit attribute triple.
func (a PropertyAttributes) IsDefault() bool {
	return a == DefaultAttributes()
}

// ShapeKey is one named slot in a shape's layout.
type ShapeKey struct {
	Name  *String
	Attrs PropertyAttributes
}

// Shape is a shared property-layout descriptor. Objects reference a shape
// and store one value per key, in key order.
type Shape struct {
	Keys []ShapeKey

	// Proto is the shared prototype of all instances; nil means the
	// default object prototype.
	Proto *Object

	// Constructor backlinks the function whose instance prototype is
	// shaped by this shape. At most one function may claim it.
	Constructor *Function
}

// Object is a plain object: a shape plus one value per shape key.
type Object struct {
	Shape *Shape
	Props []Value

	// Wrapped marks a primitive wrapper object produced by script
	// evaluation; exports unwrap it to the primitive value.
	Wrapped *Value
}

// Array is a fixed-length packed array. Holey arrays exist in the host but
// are outside the serializable subset.
type Array struct {
	Elems []Value
	Holey bool
}

// ScopeLayout describes a context's variable layout. Decoders build the
// layout first because context allocation requires it.
type ScopeLayout struct {
	Kind      ContextKind
	HasParent bool
	Names     []*String
}

// Context is a materialized lexical scope: a layout, an optional parent,
// and one value slot per declared name.
type Context struct {
	Kind   ContextKind
	Parent *Context
	Names  []*String
	Slots  []Value
}

// Script is one unit of source text. All functions captured in a snapshot
// must originate from a single script.
type Script struct {
	Source string
}

// Function is a function or class constructor closure.
type Function struct {
	Kind FunctionKind

	// Context is the closed-over scope; nil for top-level functions.
	Context *Context

	// Script plus [Start, Start+Length) locate the function's source text.
	Script *Script
	Start  int
	Length int

	ParamCount int

	// Prototype is the instance prototype object, if the function has one.
	Prototype *Object

	// compiled tracks lazy compilation state for reconstructed functions.
	compiled bool
}

// Compiled reports whether the function body has been compiled.
func (f *Function) Compiled() bool {
	return f.compiled
}

// EnsureCompiled compiles the function body on first invocation, delegating
// to the executor.
func (f *Function) EnsureCompiled(exec Executor) error {
	if f.compiled {
		return nil
	}
	if err := exec.CompileFunction(f); err != nil {
		return err
	}
	f.compiled = true
	return nil
}

// Regexp is a regular expression literal: pattern and flags strings.
type Regexp struct {
	Pattern *String
	Flags   *String
}
