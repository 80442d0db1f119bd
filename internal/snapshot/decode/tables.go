package decode

import (
	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot/wire"
)

func (d *Deserializer) deserializeStrings() {
	d.stringCount = d.readCount(domain.ErrMalformedStringTable)
	d.strings = make([]*runtime.String, 0, d.stringCount)
	for i := uint32(0); i < d.stringCount; i++ {
		s, ok := d.r.ReadString()
		if !ok {
			d.throw(domain.ErrMalformedString)
			return
		}
		d.strings = append(d.strings, d.heap.NewString(s))
	}
}

func (d *Deserializer) deserializeShapes() {
	d.shapeCount = d.readCount(domain.ErrMalformedShapeTable)
	d.shapes = make([]*runtime.Shape, 0, d.shapeCount)
	for i := uint32(0); i < d.shapeCount; i++ {
		d.deserializeShape()
	}
}

func (d *Deserializer) deserializeShape() {
	mode, ok := d.r.ReadUint32()
	if !ok || mode > wire.AttrModeCustom {
		d.throw(domain.ErrMalformedShape)
		return
	}
	protoWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedShape)
		return
	}
	propCount, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedShape)
		return
	}
	if propCount > wire.MaxPropertyCount {
		d.throw(domain.ErrTooManyProperties)
		return
	}

	if propCount == 0 && protoWord == 0 {
		d.shapes = append(d.shapes, d.heap.EmptyShape())
		return
	}

	keys := make([]runtime.ShapeKey, 0, propCount)
	for i := uint32(0); i < propCount; i++ {
		attrs := runtime.DefaultAttributes()
		if mode == wire.AttrModeCustom {
			flags, ok := d.r.ReadUint32()
			if !ok || !wire.ValidAttributeFlags(flags) {
				d.throw(domain.ErrMalformedShape)
				return
			}
			attrs = attributesFromFlags(flags)
		}
		name := d.readStringID(domain.ErrMalformedShape)
		if name == nil {
			return
		}
		keys = append(keys, runtime.ShapeKey{Name: name, Attrs: attrs})
	}

	shape := d.heap.NewShape(keys, nil)
	if protoWord != 0 {
		// Objects materialize after shapes, so the prototype is always a
		// forward reference.
		d.deferredProtos = append(d.deferredProtos, deferredProto{
			shape:    shape,
			objectID: protoWord - 1,
		})
	}
	d.shapes = append(d.shapes, shape)
}

func attributesFromFlags(flags uint32) runtime.PropertyAttributes {
	return runtime.PropertyAttributes{
		ReadOnly:     flags&wire.AttrReadOnly != 0,
		Configurable: flags&wire.AttrConfigurable != 0,
		Enumerable:   flags&wire.AttrEnumerable != 0,
	}
}

func (d *Deserializer) deserializeContexts() {
	d.contextCount = d.readCount(domain.ErrMalformedContextTable)
	d.contexts = make([]*runtime.Context, 0, d.contextCount)
	for i := uint32(0); i < d.contextCount; i++ {
		d.deserializeContext(i)
	}
}

func (d *Deserializer) deserializeContext(index uint32) {
	kindWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedContext)
		return
	}
	var kind runtime.ContextKind
	switch kindWord {
	case wire.ContextFunction:
		kind = runtime.ContextFunction
	case wire.ContextBlock:
		kind = runtime.ContextBlock
	default:
		d.throw(domain.ErrMalformedContext)
		return
	}

	parentWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedContext)
		return
	}
	var parent *runtime.Context
	if parentWord != 0 {
		// Parents always precede children, so the reference resolves
		// against the already-filled prefix of the table.
		parentID := parentWord - 1
		if parentID >= index {
			d.throw(domain.ErrBadContextRef)
			return
		}
		parent = d.contexts[parentID]
	}

	varCount, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedContext)
		return
	}
	if varCount > wire.MaxItemCount {
		d.throw(domain.ErrTooManyItems)
		return
	}

	// The layout descriptor needs every name before the context value can
	// be allocated, so the pairs are buffered first.
	names := make([]*runtime.String, varCount)
	pending := make([]valueResult, varCount)
	for i := uint32(0); i < varCount; i++ {
		name := d.readStringID(domain.ErrMalformedContext)
		if name == nil {
			return
		}
		names[i] = name
		pending[i] = d.readValue(domain.ErrMalformedContext)
		if d.err != nil {
			return
		}
	}

	layout := d.heap.NewScopeLayout(kind, parent != nil, names)
	ctx := d.heap.NewContext(layout, parent)
	for i, res := range pending {
		if res.deferred {
			d.deferredSlots = append(d.deferredSlots, deferredSlot{
				slot: &ctx.Slots[i],
				tag:  res.tag,
				id:   res.id,
			})
		} else {
			ctx.Slots[i] = res.value
		}
	}
	d.contexts = append(d.contexts, ctx)
}

func (d *Deserializer) deserializeFunctions() {
	d.functionCount = d.readCount(domain.ErrMalformedFunctionTable)
	d.functions = make([]*runtime.Function, 0, d.functionCount)
	for i := uint32(0); i < d.functionCount; i++ {
		if fn := d.deserializeFunctionLike(false); fn != nil {
			d.functions = append(d.functions, fn)
		}
	}
}

func (d *Deserializer) deserializeClasses() {
	d.classCount = d.readCount(domain.ErrMalformedClassTable)
	d.classes = make([]*runtime.Function, 0, d.classCount)
	for i := uint32(0); i < d.classCount; i++ {
		if fn := d.deserializeFunctionLike(true); fn != nil {
			d.classes = append(d.classes, fn)
		}
	}
}

// deserializeFunctionLike reads the record layout shared by functions and
// classes and builds one lazy-compile unit; the body compiles on first
// invocation.
func (d *Deserializer) deserializeFunctionLike(classTable bool) *runtime.Function {
	contextWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}
	var ctx *runtime.Context
	if contextWord != 0 {
		contextID := contextWord - 1
		if contextID >= d.contextCount {
			d.throw(domain.ErrBadContextRef)
			return nil
		}
		ctx = d.contexts[contextID]
	}

	source := d.readStringID(domain.ErrMalformedFunction)
	if source == nil {
		return nil
	}

	start, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}
	length, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}
	paramCount, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}

	flags, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}
	kind, ok := wire.FlagsToFunctionKind(flags)
	if !ok || kind.IsClassConstructor() != classTable {
		d.throw(domain.ErrInvalidFunctionFlags)
		return nil
	}

	protoWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedFunction)
		return nil
	}

	fn := d.heap.NewFunction(kind, ctx, d.scriptFor(source), int(start), int(length), int(paramCount))
	if protoWord != 0 {
		protoID := protoWord - 1
		if int64(protoID) < int64(len(d.objects)) {
			d.claimPrototype(fn, d.objects[protoID])
		} else {
			d.deferredProtos = append(d.deferredProtos, deferredProto{
				function: fn,
				objectID: protoID,
			})
		}
	}
	return fn
}

func (d *Deserializer) deserializeArrays() {
	d.arrayCount = d.readCount(domain.ErrMalformedArrayTable)
	d.arrays = make([]*runtime.Array, 0, d.arrayCount)
	for i := uint32(0); i < d.arrayCount; i++ {
		d.deserializeArray()
	}
}

func (d *Deserializer) deserializeArray() {
	length, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedArray)
		return
	}
	if length > wire.MaxItemCount {
		d.throw(domain.ErrTooManyItems)
		return
	}

	arr := d.heap.NewArray(make([]runtime.Value, length))
	d.curArray, d.curElems = arr, arr.Elems
	for i := uint32(0); i < length; i++ {
		res := d.readValue(domain.ErrMalformedArray)
		if d.err != nil {
			break
		}
		if res.deferred {
			d.deferredSlots = append(d.deferredSlots, deferredSlot{
				slot: &arr.Elems[i],
				tag:  res.tag,
				id:   res.id,
			})
		} else {
			d.curElems[i] = res.value
		}
	}
	d.curArray, d.curElems = nil, nil
	if d.err == nil {
		d.arrays = append(d.arrays, arr)
	}
}

func (d *Deserializer) deserializeObjects() {
	d.objectCount = d.readCount(domain.ErrMalformedObjectTable)
	d.objects = make([]*runtime.Object, 0, d.objectCount)
	for i := uint32(0); i < d.objectCount; i++ {
		d.deserializeObject()
	}
}

func (d *Deserializer) deserializeObject() {
	shapeID, ok := d.r.ReadUint32()
	if !ok {
		d.throw(domain.ErrMalformedObject)
		return
	}
	if shapeID >= d.shapeCount {
		d.throw(domain.ErrBadShapeRef)
		return
	}
	shape := d.shapes[shapeID]

	obj := d.heap.NewObject(shape, nil)
	d.curObject, d.curProps = obj, obj.Props
	for i := range shape.Keys {
		res := d.readValue(domain.ErrMalformedObject)
		if d.err != nil {
			break
		}
		if res.deferred {
			d.deferredSlots = append(d.deferredSlots, deferredSlot{
				slot: &obj.Props[i],
				tag:  res.tag,
				id:   res.id,
			})
		} else {
			d.curProps[i] = res.value
		}
	}
	d.curObject, d.curProps = nil, nil
	if d.err == nil {
		d.objects = append(d.objects, obj)
	}
}

// deserializeExports decodes every (name, value) pair before installing
// any of them, so a malformed export leaves the namespace untouched.
func (d *Deserializer) deserializeExports(ns *runtime.Namespace) {
	d.exportCount = d.readCount(domain.ErrMalformedExportTable)
	names := make([]*runtime.String, 0, d.exportCount)
	values := make([]runtime.Value, 0, d.exportCount)
	for i := uint32(0); i < d.exportCount; i++ {
		name := d.readStringID(domain.ErrMalformedExportTable)
		if name == nil {
			return
		}
		res := d.readValue(domain.ErrMalformedExportTable)
		if d.err != nil {
			return
		}
		names = append(names, name)
		values = append(values, res.value)
	}
	if d.err != nil {
		return
	}

	ns.Reserve(len(names))
	for i, name := range names {
		ns.Set(name.Text(), values[i])
	}
}
