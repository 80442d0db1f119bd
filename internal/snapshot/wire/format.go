package wire

// Magic identifies a snapshot buffer.
var Magic = [4]byte{'+', '+', '+', ';'}

// ValueTag discriminates serialized values. Tags are wire values; the order
// is fixed.
type ValueTag uint32

const (
	TagFalse ValueTag = iota
	TagTrue
	TagNull
	TagUndefined
	TagInteger
	TagDouble
	TagStringID
	TagArrayID
	TagObjectID
	TagFunctionID
	TagClassID
	TagRegexp
)

func (t ValueTag) String() string {
	switch t {
	case TagFalse:
		return "false"
	case TagTrue:
		return "true"
	case TagNull:
		return "null"
	case TagUndefined:
		return "undefined"
	case TagInteger:
		return "integer"
	case TagDouble:
		return "double"
	case TagStringID:
		return "string-id"
	case TagArrayID:
		return "array-id"
	case TagObjectID:
		return "object-id"
	case TagFunctionID:
		return "function-id"
	case TagClassID:
		return "class-id"
	case TagRegexp:
		return "regexp"
	default:
		return "unknown"
	}
}

// Context kinds.
const (
	ContextFunction uint32 = 0
	ContextBlock    uint32 = 1
)

// Shape attribute modes.
const (
	// AttrModeDefault: every property carries the implicit default
	// attributes; no flag words on the wire.
	AttrModeDefault uint32 = 0
	// AttrModeCustom: every property carries an explicit flag word. The
	// encoder writes the default word for properties before the first
	// customized one, so first_custom_index never appears on the wire.
	AttrModeCustom uint32 = 1
)

// Property attribute flag bits.
const (
	AttrReadOnly     uint32 = 1 << 0
	AttrConfigurable uint32 = 1 << 1
	AttrEnumerable   uint32 = 1 << 2

	attrMask = AttrReadOnly | AttrConfigurable | AttrEnumerable
)

// DefaultAttributeFlags is the implicit attribute word: writable,
// configurable, enumerable.
const DefaultAttributeFlags = AttrConfigurable | AttrEnumerable

// ValidAttributeFlags reports whether flags uses only defined bits.
func ValidAttributeFlags(flags uint32) bool {
	return flags&^attrMask == 0
}

// Hostile-input ceilings. Counts are rejected before any allocation.
const (
	// MaxItemCount bounds every table's declared element count.
	MaxItemCount uint32 = 1<<26 - 1

	// MaxPropertyCount bounds one shape's property count.
	MaxPropertyCount uint32 = 1020
)
