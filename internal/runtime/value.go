package runtime

// Kind discriminates the tagged Value union.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindDouble
	KindString
	KindObject
	KindArray
	KindFunction
	KindRegexp
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindRegexp:
		return "regexp"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the value kinds the snapshot format
// supports. Heap-allocated kinds carry a pointer whose identity is the
// entity identity.
type Value struct {
	Kind Kind

	BoolVal   bool
	IntVal    int32
	DoubleVal float64

	StrVal    *String
	ObjectVal *Object
	ArrayVal  *Array
	FuncVal   *Function
	RegexpVal *Regexp
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{Kind: KindUndefined} }

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{Kind: KindBool, BoolVal: b} }

// Int returns a 32-bit integer value.
func Int(i int32) Value { return Value{Kind: KindInt, IntVal: i} }

// Double returns a float value.
func Double(d float64) Value { return Value{Kind: KindDouble, DoubleVal: d} }

// Str returns a string value.
func Str(s *String) Value { return Value{Kind: KindString, StrVal: s} }

// Obj returns an object value.
func Obj(o *Object) Value { return Value{Kind: KindObject, ObjectVal: o} }

// Arr returns an array value.
func Arr(a *Array) Value { return Value{Kind: KindArray, ArrayVal: a} }

// Fn returns a function (or class constructor) value.
func Fn(f *Function) Value { return Value{Kind: KindFunction, FuncVal: f} }

// Re returns a regexp value.
func Re(r *Regexp) Value { return Value{Kind: KindRegexp, RegexpVal: r} }

// IsHeapValue reports whether the value carries a heap entity pointer.
func (v Value) IsHeapValue() bool {
	switch v.Kind {
	case KindString, KindObject, KindArray, KindFunction, KindRegexp:
		return true
	default:
		return false
	}
}
