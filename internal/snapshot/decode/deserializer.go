package decode

import (
	"bytes"

	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot/wire"
	"github.com/veldtlabs/websnap/pkg/codec"
)

// Deserializer reconstructs a value graph from one snapshot buffer.
// Instances are single-use.
type Deserializer struct {
	heap *runtime.Heap
	exec runtime.Executor

	r    *codec.Reader
	used bool
	err  error

	stringCount   uint32
	shapeCount    uint32
	contextCount  uint32
	functionCount uint32
	arrayCount    uint32
	objectCount   uint32
	classCount    uint32
	exportCount   uint32

	strings   []*runtime.String
	shapes    []*runtime.Shape
	contexts  []*runtime.Context
	functions []*runtime.Function
	arrays    []*runtime.Array
	objects   []*runtime.Object
	classes   []*runtime.Function

	deferredSlots  []deferredSlot
	deferredProtos []deferredProto

	// tablesFinal flips once every table has its final count; from then on
	// an unmaterialized reference is a bounds error, not a deferral.
	tablesFinal bool

	// Raw views into the entity currently being filled. Allocation can
	// trigger a collection, so they are re-derived from the owning handle
	// by the heap's post-collection callback.
	curObject *runtime.Object
	curArray  *runtime.Array
	curProps  []runtime.Value
	curElems  []runtime.Value

	scripts map[*runtime.String]*runtime.Script
}

// TableCounts holds the per-table record counts declared by a snapshot.
type TableCounts struct {
	Strings   uint32 `json:"strings"`
	Shapes    uint32 `json:"shapes"`
	Contexts  uint32 `json:"contexts"`
	Functions uint32 `json:"functions"`
	Arrays    uint32 `json:"arrays"`
	Objects   uint32 `json:"objects"`
	Classes   uint32 `json:"classes"`
	Exports   uint32 `json:"exports"`
}

// TableCounts reports the counts read during a successful Deserialize.
func (d *Deserializer) TableCounts() TableCounts {
	return TableCounts{
		Strings:   d.stringCount,
		Shapes:    d.shapeCount,
		Contexts:  d.contextCount,
		Functions: d.functionCount,
		Arrays:    d.arrayCount,
		Objects:   d.objectCount,
		Classes:   d.classCount,
		Exports:   d.exportCount,
	}
}

// NewDeserializer creates a deserializer over the given heap and executor.
func NewDeserializer(heap *runtime.Heap, exec runtime.Executor) *Deserializer {
	return &Deserializer{
		heap:    heap,
		exec:    exec,
		scripts: make(map[*runtime.String]*runtime.Script),
	}
}

// throw records the first error, zeroes every table count and moves the
// cursor to the end of the buffer. Any in-flight read loop terminates on
// its next iteration without unwinding.
func (d *Deserializer) throw(err *domain.DomainError) {
	if d.err == nil {
		d.err = err
	}
	d.stringCount = 0
	d.shapeCount = 0
	d.contextCount = 0
	d.functionCount = 0
	d.arrayCount = 0
	d.objectCount = 0
	d.classCount = 0
	d.exportCount = 0
	d.r.SkipToEnd()
}

// Deserialize decodes buf and installs its exports into ns. The namespace
// is untouched unless the whole snapshot decodes cleanly. Bytes after the
// export table are an appended program, executed last.
func (d *Deserializer) Deserialize(buf []byte, ns *runtime.Namespace) error {
	if d.used {
		return domain.ErrDeserializerReuse
	}
	d.used = true
	d.r = codec.NewReader(buf)

	handle := d.heap.AddGCEpilogueCallback(d.refreshRawReferences)
	defer d.heap.RemoveGCEpilogueCallback(handle)

	magic, ok := d.r.ReadRawBytes(len(wire.Magic))
	if !ok || !bytes.Equal(magic, wire.Magic[:]) {
		d.throw(domain.ErrInvalidMagic)
		return d.err
	}

	d.deserializeStrings()
	d.deserializeShapes()
	d.deserializeContexts()
	d.deserializeFunctions()
	d.deserializeArrays()
	d.deserializeObjects()
	d.deserializeClasses()
	d.processDeferredReferences()
	d.tablesFinal = true
	d.deserializeExports(ns)
	if d.err != nil {
		return d.err
	}

	if d.r.Remaining() > 0 {
		if _, err := d.exec.RunScript(string(d.r.RemainingBytes())); err != nil {
			return err
		}
	}
	return nil
}

// refreshRawReferences re-derives every cached raw view from its owning
// handle. Runs after each collection cycle.
func (d *Deserializer) refreshRawReferences() {
	if d.curObject != nil {
		d.curProps = d.curObject.Props
	}
	if d.curArray != nil {
		d.curElems = d.curArray.Elems
	}
}

// readCount reads a table's element count and rejects it against the item
// ceiling before the caller allocates anything.
func (d *Deserializer) readCount(tableErr *domain.DomainError) uint32 {
	count, ok := d.r.ReadUint32()
	if !ok {
		d.throw(tableErr)
		return 0
	}
	if count > wire.MaxItemCount {
		d.throw(domain.ErrTooManyItems)
		return 0
	}
	return count
}

// readStringID reads a string reference. The string table is always fully
// materialized before any reference to it, so bounds are final.
func (d *Deserializer) readStringID(malformed *domain.DomainError) *runtime.String {
	id, ok := d.r.ReadUint32()
	if !ok {
		d.throw(malformed)
		return nil
	}
	if id >= d.stringCount {
		d.throw(domain.ErrBadStringRef)
		return nil
	}
	return d.strings[id]
}

// valueResult is one decoded value, or a reference to an entity that is
// not materialized yet.
type valueResult struct {
	value    runtime.Value
	deferred bool
	tag      wire.ValueTag
	id       uint32
}

// readValue decodes one tagged value. References into tables still being
// filled come back deferred; the resolver patches them after all tables
// have their final counts.
func (d *Deserializer) readValue(malformed *domain.DomainError) valueResult {
	tagWord, ok := d.r.ReadUint32()
	if !ok {
		d.throw(malformed)
		return valueResult{}
	}
	switch tag := wire.ValueTag(tagWord); tag {
	case wire.TagFalse:
		return valueResult{value: runtime.Boolean(false)}
	case wire.TagTrue:
		return valueResult{value: runtime.Boolean(true)}
	case wire.TagNull:
		return valueResult{value: runtime.Null()}
	case wire.TagUndefined:
		return valueResult{value: runtime.Undefined()}
	case wire.TagInteger:
		n, ok := d.r.ReadZigZag32()
		if !ok {
			d.throw(domain.ErrMalformedValue)
			return valueResult{}
		}
		return valueResult{value: runtime.Int(n)}
	case wire.TagDouble:
		f, ok := d.r.ReadDouble()
		if !ok {
			d.throw(domain.ErrMalformedValue)
			return valueResult{}
		}
		return valueResult{value: runtime.Double(f)}
	case wire.TagStringID:
		str := d.readStringID(domain.ErrMalformedValue)
		if str == nil {
			return valueResult{}
		}
		return valueResult{value: runtime.Str(str)}
	case wire.TagArrayID, wire.TagObjectID, wire.TagFunctionID, wire.TagClassID:
		id, ok := d.r.ReadUint32()
		if !ok {
			d.throw(domain.ErrMalformedValue)
			return valueResult{}
		}
		if v, ok := d.resolveEntity(tag, id); ok {
			return valueResult{value: v}
		}
		if d.tablesFinal {
			d.throw(badRefError(tag))
			return valueResult{}
		}
		return valueResult{deferred: true, tag: tag, id: id}
	case wire.TagRegexp:
		pattern := d.readStringID(domain.ErrMalformedRegexp)
		if pattern == nil {
			return valueResult{}
		}
		flags := d.readStringID(domain.ErrMalformedRegexp)
		if flags == nil {
			return valueResult{}
		}
		return valueResult{value: runtime.Re(d.heap.NewRegexp(pattern, flags))}
	default:
		d.throw(domain.ErrMalformedValue)
		return valueResult{}
	}
}

// resolveEntity resolves a reference against the materialized portion of
// its table. ok=false means the target does not exist yet.
func (d *Deserializer) resolveEntity(tag wire.ValueTag, id uint32) (runtime.Value, bool) {
	switch tag {
	case wire.TagArrayID:
		if int64(id) < int64(len(d.arrays)) {
			return runtime.Arr(d.arrays[id]), true
		}
	case wire.TagObjectID:
		if int64(id) < int64(len(d.objects)) {
			return runtime.Obj(d.objects[id]), true
		}
	case wire.TagFunctionID:
		if int64(id) < int64(len(d.functions)) {
			return runtime.Fn(d.functions[id]), true
		}
	case wire.TagClassID:
		if int64(id) < int64(len(d.classes)) {
			return runtime.Fn(d.classes[id]), true
		}
	}
	return runtime.Value{}, false
}

// scriptFor returns the shared script entity for one compacted source
// string, allocating it on first use.
func (d *Deserializer) scriptFor(source *runtime.String) *runtime.Script {
	if script, ok := d.scripts[source]; ok {
		return script
	}
	script := d.heap.NewScript(source.Text())
	d.scripts[source] = script
	return script
}
