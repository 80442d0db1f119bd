package encode

import (
	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot/wire"
	"github.com/veldtlabs/websnap/pkg/codec"
)

// Serializer captures the subgraph reachable from a set of named export
// roots into one snapshot buffer. Instances are single-use.
type Serializer struct {
	heap *runtime.Heap
	exec runtime.Executor

	used bool
	err  error

	stringWriter   codec.Writer
	shapeWriter    codec.Writer
	contextWriter  codec.Writer
	functionWriter codec.Writer
	classWriter    codec.Writer
	arrayWriter    codec.Writer
	objectWriter   codec.Writer
	exportWriter   codec.Writer

	stringIDs   IndexMap[*runtime.String]
	shapeIDs    IndexMap[*runtime.Shape]
	contextIDs  IndexMap[*runtime.Context]
	functionIDs IndexMap[*runtime.Function]
	classIDs    IndexMap[*runtime.Function]
	arrayIDs    IndexMap[*runtime.Array]
	objectIDs   IndexMap[*runtime.Object]

	// Pending entities in assigned-ID order, serialized in the fixed
	// second pass.
	contexts  []*runtime.Context
	functions []*runtime.Function
	classes   []*runtime.Function
	arrays    []*runtime.Array
	objects   []*runtime.Object

	queue []runtime.Value

	fullScript *runtime.Script
	intervals  []Interval
	sourceID   uint32
	offsets    map[int]int

	exportCount uint32
}

// NewSerializer creates a serializer over the given heap and executor.
func NewSerializer(heap *runtime.Heap, exec runtime.Executor) *Serializer {
	return &Serializer{heap: heap, exec: exec}
}

// throw records the first error; later errors are ignored. Processing
// continues so no code path needs to unwind.
func (s *Serializer) throw(err *domain.DomainError) {
	if s.err == nil {
		s.err = err
	}
}

// TakeSnapshot runs each export name as a script, captures everything
// reachable from the results, and returns the assembled snapshot buffer.
func (s *Serializer) TakeSnapshot(exportNames []string) ([]byte, error) {
	if s.used {
		return nil, domain.ErrSerializerReuse
	}
	s.used = true

	exportValues := make([]runtime.Value, len(exportNames))
	for i, name := range exportNames {
		value, err := s.exec.RunScript(name)
		if err != nil {
			return nil, domain.ErrExportNotProduced.WithDetails(name).WithCause(err)
		}
		// Script evaluation may hand back a primitive wrapped in an object;
		// exports carry the primitive itself.
		if value.Kind == runtime.KindObject && value.ObjectVal.Wrapped != nil {
			value = *value.ObjectVal.Wrapped
		}
		exportValues[i] = value
		s.discover(value)
	}

	s.serializeSource()

	for i, name := range exportNames {
		s.serializeExport(name, exportValues[i])
	}

	buffer := s.writeSnapshot()
	if s.err != nil {
		return nil, s.err
	}
	return buffer, nil
}

// discover drains a breadth-first traversal from root, interning every
// reachable entity. Enqueuing an already-interned value is harmless; only
// the first dequeue of a value produces new references.
func (s *Serializer) discover(root runtime.Value) {
	s.queue = append(s.queue, root)
	for len(s.queue) > 0 {
		value := s.queue[0]
		s.queue = s.queue[1:]
		switch value.Kind {
		case runtime.KindFunction:
			if value.FuncVal.Kind.IsClassConstructor() {
				s.discoverClass(value.FuncVal)
			} else {
				s.discoverFunction(value.FuncVal)
			}
		case runtime.KindObject:
			s.discoverObject(value.ObjectVal)
		case runtime.KindArray:
			s.discoverArray(value.ArrayVal)
		case runtime.KindUndefined, runtime.KindNull, runtime.KindBool,
			runtime.KindInt, runtime.KindDouble, runtime.KindString,
			runtime.KindRegexp:
			// No outgoing references to other entities.
		default:
			s.throw(domain.ErrUnsupportedValue)
		}
	}
}

func (s *Serializer) intern(size int) bool {
	if uint32(size) >= wire.MaxItemCount {
		s.throw(domain.ErrTooManyItems)
		return false
	}
	return true
}

func (s *Serializer) discoverFunction(fn *runtime.Function) {
	if !s.intern(s.functionIDs.Size()) {
		return
	}
	if _, found := s.functionIDs.LookupOrInsert(fn); found {
		return
	}
	s.functions = append(s.functions, fn)
	s.discoverContextAndPrototype(fn)
	s.discoverSource(fn)
}

func (s *Serializer) discoverClass(fn *runtime.Function) {
	if !s.intern(s.classIDs.Size()) {
		return
	}
	if _, found := s.classIDs.LookupOrInsert(fn); found {
		return
	}
	s.classes = append(s.classes, fn)
	s.discoverContextAndPrototype(fn)
	s.discoverSource(fn)
}

func (s *Serializer) discoverContextAndPrototype(fn *runtime.Function) {
	if ctx := fn.Context; ctx != nil && ctx.Kind != runtime.ContextScript {
		s.discoverContext(ctx)
	}
	if fn.Prototype != nil {
		s.queue = append(s.queue, runtime.Obj(fn.Prototype))
	}
}

// discoverContext interns the full parent chain before the child, so a
// parent's ID is always strictly less than its child's.
func (s *Serializer) discoverContext(ctx *runtime.Context) {
	if ctx.Parent != nil && ctx.Parent.Kind != runtime.ContextScript {
		s.discoverContext(ctx.Parent)
	}
	if !s.intern(s.contextIDs.Size()) {
		return
	}
	if _, found := s.contextIDs.LookupOrInsert(ctx); found {
		return
	}
	s.contexts = append(s.contexts, ctx)
	for _, slot := range ctx.Slots {
		s.queue = append(s.queue, slot)
	}
}

func (s *Serializer) discoverSource(fn *runtime.Function) {
	if fn.Script == nil {
		s.throw(domain.ErrFunctionWithoutSource)
		return
	}
	if s.fullScript == nil {
		s.fullScript = fn.Script
	} else if s.fullScript != fn.Script {
		s.throw(domain.ErrMultipleScripts)
		return
	}
	s.intervals = append(s.intervals, Interval{Start: fn.Start, End: fn.Start + fn.Length})
}

func (s *Serializer) discoverArray(arr *runtime.Array) {
	if !s.intern(s.arrayIDs.Size()) {
		return
	}
	if _, found := s.arrayIDs.LookupOrInsert(arr); found {
		return
	}
	s.arrays = append(s.arrays, arr)
	if arr.Holey {
		s.throw(domain.ErrUnsupportedArray)
		return
	}
	s.queue = append(s.queue, arr.Elems...)
}

func (s *Serializer) discoverObject(obj *runtime.Object) {
	if !s.intern(s.objectIDs.Size()) {
		return
	}
	if _, found := s.objectIDs.LookupOrInsert(obj); found {
		return
	}
	s.objects = append(s.objects, obj)

	if obj.Shape == nil {
		s.throw(domain.ErrDictionaryModeObject)
		return
	}
	if obj.Shape.Proto != nil {
		s.queue = append(s.queue, runtime.Obj(obj.Shape.Proto))
	}
	s.queue = append(s.queue, obj.Props...)
}

// serializeSource compacts the recorded function spans into the minimal
// covering source string and interns it; its string ID is shared by every
// function and class record.
func (s *Serializer) serializeSource() {
	if len(s.intervals) == 0 {
		return
	}
	compacted, offsets := CompactSource(s.fullScript.Source, s.intervals)
	s.offsets = offsets
	s.sourceID = s.serializeString(s.heap.NewString(compacted))
}

// serializeString writes the string on first reference and returns its ID.
func (s *Serializer) serializeString(str *runtime.String) uint32 {
	if uint32(s.stringIDs.Size()) >= wire.MaxItemCount {
		s.throw(domain.ErrTooManyItems)
		return 0
	}
	id, found := s.stringIDs.LookupOrInsert(str)
	if found {
		return id
	}
	s.stringWriter.WriteUint32(uint32(len(str.Bytes)))
	s.stringWriter.WriteRawBytes(str.Bytes)
	return id
}

// serializeShape writes the shape on first reference and returns its ID.
func (s *Serializer) serializeShape(shape *runtime.Shape) uint32 {
	id, found := s.shapeIDs.LookupOrInsert(shape)
	if found {
		return id
	}

	if uint32(len(shape.Keys)) > wire.MaxPropertyCount {
		s.throw(domain.ErrTooManyProperties)
		return id
	}

	firstCustom := -1
	nameIDs := make([]uint32, 0, len(shape.Keys))
	attrFlags := make([]uint32, 0, len(shape.Keys))
	for i, key := range shape.Keys {
		if key.Name == nil {
			s.throw(domain.ErrUnsupportedPropertyKey)
			return id
		}
		if firstCustom >= 0 || !key.Attrs.IsDefault() {
			if firstCustom == -1 {
				firstCustom = i
			}
			attrFlags = append(attrFlags, attributesToFlags(key.Attrs))
		}
		nameIDs = append(nameIDs, s.serializeString(key.Name))
	}

	if firstCustom == -1 {
		s.shapeWriter.WriteUint32(wire.AttrModeDefault)
	} else {
		s.shapeWriter.WriteUint32(wire.AttrModeCustom)
	}

	if shape.Proto == nil {
		s.shapeWriter.WriteUint32(0)
	} else {
		protoID, ok := s.objectIDs.Lookup(shape.Proto)
		if !ok {
			s.throw(domain.ErrUnsupportedPrototype)
			return id
		}
		s.shapeWriter.WriteUint32(protoID + 1)
	}

	s.shapeWriter.WriteUint32(uint32(len(nameIDs)))
	for i, nameID := range nameIDs {
		if firstCustom >= 0 {
			if i < firstCustom {
				s.shapeWriter.WriteUint32(wire.DefaultAttributeFlags)
			} else {
				s.shapeWriter.WriteUint32(attrFlags[i-firstCustom])
			}
		}
		s.shapeWriter.WriteUint32(nameID)
	}
	return id
}

func attributesToFlags(attrs runtime.PropertyAttributes) uint32 {
	var flags uint32
	if attrs.ReadOnly {
		flags |= wire.AttrReadOnly
	}
	if attrs.Configurable {
		flags |= wire.AttrConfigurable
	}
	if attrs.Enumerable {
		flags |= wire.AttrEnumerable
	}
	return flags
}

func (s *Serializer) serializeContext(ctx *runtime.Context) {
	var parentID uint32
	if ctx.Parent != nil && ctx.Parent.Kind != runtime.ContextScript {
		id, ok := s.contextIDs.Lookup(ctx.Parent)
		if !ok {
			s.throw(domain.ErrBadContextRef)
			return
		}
		parentID = id + 1
	}

	switch ctx.Kind {
	case runtime.ContextFunction:
		s.contextWriter.WriteUint32(wire.ContextFunction)
	case runtime.ContextBlock:
		s.contextWriter.WriteUint32(wire.ContextBlock)
	default:
		s.throw(domain.ErrUnsupportedContextKind)
		return
	}

	s.contextWriter.WriteUint32(parentID)
	s.contextWriter.WriteUint32(uint32(len(ctx.Names)))
	for i, name := range ctx.Names {
		s.contextWriter.WriteUint32(s.serializeString(name))
		s.writeValue(ctx.Slots[i], &s.contextWriter)
	}
}

// serializeFunctionInfo writes the record layout shared by functions and
// classes.
func (s *Serializer) serializeFunctionInfo(w *codec.Writer, fn *runtime.Function) {
	if ctx := fn.Context; ctx != nil && ctx.Kind != runtime.ContextScript {
		id, ok := s.contextIDs.Lookup(ctx)
		if !ok {
			s.throw(domain.ErrBadContextRef)
			return
		}
		w.WriteUint32(id + 1)
	} else {
		w.WriteUint32(0)
	}

	w.WriteUint32(s.sourceID)
	w.WriteUint32(uint32(s.offsets[fn.Start]))
	w.WriteUint32(uint32(fn.Length))
	w.WriteUint32(uint32(fn.ParamCount))

	flags, ok := wire.FunctionKindToFlags(fn.Kind)
	if !ok {
		s.throw(domain.ErrUnsupportedFunctionKind)
		return
	}
	w.WriteUint32(flags)

	if fn.Prototype != nil {
		id, ok := s.objectIDs.Lookup(fn.Prototype)
		if !ok {
			s.throw(domain.ErrBadObjectRef)
			return
		}
		w.WriteUint32(id + 1)
	} else {
		w.WriteUint32(0)
	}
}

func (s *Serializer) serializeArray(arr *runtime.Array) {
	if arr.Holey {
		s.throw(domain.ErrUnsupportedArray)
		return
	}
	s.arrayWriter.WriteUint32(uint32(len(arr.Elems)))
	for _, elem := range arr.Elems {
		s.writeValue(elem, &s.arrayWriter)
	}
}

func (s *Serializer) serializeObject(obj *runtime.Object) {
	if obj.Shape == nil {
		s.throw(domain.ErrDictionaryModeObject)
		return
	}
	shapeID := s.serializeShape(obj.Shape)
	s.objectWriter.WriteUint32(shapeID)
	for _, prop := range obj.Props {
		s.writeValue(prop, &s.objectWriter)
	}
}

func (s *Serializer) serializeExport(name string, value runtime.Value) {
	s.exportCount++
	nameID := s.serializeString(s.heap.NewString(name))
	s.exportWriter.WriteUint32(nameID)
	s.writeValue(value, &s.exportWriter)
}

// writeValue writes one tagged value. Entity references must already be
// interned by discovery.
func (s *Serializer) writeValue(value runtime.Value, w *codec.Writer) {
	switch value.Kind {
	case runtime.KindUndefined:
		w.WriteUint32(uint32(wire.TagUndefined))
	case runtime.KindNull:
		w.WriteUint32(uint32(wire.TagNull))
	case runtime.KindBool:
		if value.BoolVal {
			w.WriteUint32(uint32(wire.TagTrue))
		} else {
			w.WriteUint32(uint32(wire.TagFalse))
		}
	case runtime.KindInt:
		w.WriteUint32(uint32(wire.TagInteger))
		w.WriteZigZag32(value.IntVal)
	case runtime.KindDouble:
		w.WriteUint32(uint32(wire.TagDouble))
		w.WriteDouble(value.DoubleVal)
	case runtime.KindString:
		id := s.serializeString(value.StrVal)
		w.WriteUint32(uint32(wire.TagStringID))
		w.WriteUint32(id)
	case runtime.KindObject:
		id, ok := s.objectIDs.Lookup(value.ObjectVal)
		if !ok {
			s.throw(domain.ErrUnsupportedValue)
			return
		}
		w.WriteUint32(uint32(wire.TagObjectID))
		w.WriteUint32(id)
	case runtime.KindArray:
		id, ok := s.arrayIDs.Lookup(value.ArrayVal)
		if !ok {
			s.throw(domain.ErrUnsupportedValue)
			return
		}
		w.WriteUint32(uint32(wire.TagArrayID))
		w.WriteUint32(id)
	case runtime.KindFunction:
		if value.FuncVal.Kind.IsClassConstructor() {
			id, ok := s.classIDs.Lookup(value.FuncVal)
			if !ok {
				s.throw(domain.ErrUnsupportedValue)
				return
			}
			w.WriteUint32(uint32(wire.TagClassID))
			w.WriteUint32(id)
		} else {
			id, ok := s.functionIDs.Lookup(value.FuncVal)
			if !ok {
				s.throw(domain.ErrUnsupportedValue)
				return
			}
			w.WriteUint32(uint32(wire.TagFunctionID))
			w.WriteUint32(id)
		}
	case runtime.KindRegexp:
		patternID := s.serializeString(value.RegexpVal.Pattern)
		flagsID := s.serializeString(value.RegexpVal.Flags)
		w.WriteUint32(uint32(wire.TagRegexp))
		w.WriteUint32(patternID)
		w.WriteUint32(flagsID)
	default:
		s.throw(domain.ErrUnsupportedValue)
	}
}

// writeSnapshot serializes the pending entity lists and assembles the
// tables in wire order behind the magic number.
func (s *Serializer) writeSnapshot() []byte {
	for _, ctx := range s.contexts {
		s.serializeContext(ctx)
	}
	for _, fn := range s.functions {
		s.serializeFunctionInfo(&s.functionWriter, fn)
	}
	for _, class := range s.classes {
		s.serializeFunctionInfo(&s.classWriter, class)
	}
	for _, arr := range s.arrays {
		s.serializeArray(arr)
	}
	for _, obj := range s.objects {
		s.serializeObject(obj)
	}
	// Strings and shapes were written when first referenced.

	if s.err != nil {
		return nil
	}

	total := codec.NewWriter(4 + 8*4 +
		s.stringWriter.Len() + s.shapeWriter.Len() + s.contextWriter.Len() +
		s.functionWriter.Len() + s.arrayWriter.Len() + s.objectWriter.Len() +
		s.classWriter.Len() + s.exportWriter.Len())

	total.WriteRawBytes(wire.Magic[:])
	total.WriteUint32(uint32(s.stringIDs.Size()))
	total.WriteRawBytes(s.stringWriter.Bytes())
	total.WriteUint32(uint32(s.shapeIDs.Size()))
	total.WriteRawBytes(s.shapeWriter.Bytes())
	total.WriteUint32(uint32(s.contextIDs.Size()))
	total.WriteRawBytes(s.contextWriter.Bytes())
	total.WriteUint32(uint32(s.functionIDs.Size()))
	total.WriteRawBytes(s.functionWriter.Bytes())
	total.WriteUint32(uint32(s.arrayIDs.Size()))
	total.WriteRawBytes(s.arrayWriter.Bytes())
	total.WriteUint32(uint32(s.objectIDs.Size()))
	total.WriteRawBytes(s.objectWriter.Bytes())
	total.WriteUint32(uint32(s.classIDs.Size()))
	total.WriteRawBytes(s.classWriter.Bytes())
	total.WriteUint32(s.exportCount)
	total.WriteRawBytes(s.exportWriter.Bytes())
	return total.Bytes()
}
