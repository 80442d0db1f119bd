package decode

import (
	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot/wire"
)

// deferredSlot is a value slot whose target entity was not materialized
// when the reference was read.
type deferredSlot struct {
	slot *runtime.Value
	tag  wire.ValueTag
	id   uint32
}

// deferredProto is a pending prototype installation: into a shape, or into
// a function (which also claims the prototype's shape).
type deferredProto struct {
	shape    *runtime.Shape
	function *runtime.Function
	objectID uint32
}

// processDeferredReferences runs once, after every table has its final
// count. Each target ID is re-validated against that count before the slot
// is written. The pending lists are cleared unconditionally so the pass
// cannot apply twice.
func (d *Deserializer) processDeferredReferences() {
	defer func() {
		d.deferredSlots = nil
		d.deferredProtos = nil
	}()
	if d.err != nil {
		return
	}

	for _, ref := range d.deferredSlots {
		switch ref.tag {
		case wire.TagArrayID:
			if ref.id >= d.arrayCount {
				d.throw(domain.ErrBadArrayRef)
				return
			}
			*ref.slot = runtime.Arr(d.arrays[ref.id])
		case wire.TagObjectID:
			if ref.id >= d.objectCount {
				d.throw(domain.ErrBadObjectRef)
				return
			}
			*ref.slot = runtime.Obj(d.objects[ref.id])
		case wire.TagFunctionID:
			if ref.id >= d.functionCount {
				d.throw(domain.ErrBadFunctionRef)
				return
			}
			*ref.slot = runtime.Fn(d.functions[ref.id])
		case wire.TagClassID:
			if ref.id >= d.classCount {
				d.throw(domain.ErrBadClassRef)
				return
			}
			*ref.slot = runtime.Fn(d.classes[ref.id])
		default:
			d.throw(domain.ErrInvalidDeferredRef)
			return
		}
	}

	for _, ref := range d.deferredProtos {
		if ref.objectID >= d.objectCount {
			d.throw(domain.ErrBadObjectRef)
			return
		}
		obj := d.objects[ref.objectID]
		if ref.function != nil {
			d.claimPrototype(ref.function, obj)
			if d.err != nil {
				return
			}
		} else {
			ref.shape.Proto = obj
		}
	}
}

// claimPrototype installs obj as fn's instance prototype and backlinks fn
// as the constructor of obj's shape. A shape holds at most one constructor.
// The canonical empty shape is shared across unrelated objects and cannot
// carry a backlink.
func (d *Deserializer) claimPrototype(fn *runtime.Function, obj *runtime.Object) {
	shape := obj.Shape
	if shape != d.heap.EmptyShape() {
		if shape.Constructor != nil && shape.Constructor != fn {
			d.throw(domain.ErrPrototypeReuse)
			return
		}
		shape.Constructor = fn
	}
	fn.Prototype = obj
}

// badRefError maps a reference tag to its bounds error.
func badRefError(tag wire.ValueTag) *domain.DomainError {
	switch tag {
	case wire.TagArrayID:
		return domain.ErrBadArrayRef
	case wire.TagObjectID:
		return domain.ErrBadObjectRef
	case wire.TagFunctionID:
		return domain.ErrBadFunctionRef
	case wire.TagClassID:
		return domain.ErrBadClassRef
	default:
		return domain.ErrInvalidDeferredRef
	}
}
