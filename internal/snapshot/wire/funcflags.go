package wire

import "github.com/veldtlabs/websnap/internal/runtime"

// Function flag bits. A flag word is the only function-kind encoding on the
// wire; not every bit pattern is valid, and decoding rejects patterns
// outside the bijection.
const (
	FlagAsync              uint32 = 1 << 0
	FlagGenerator          uint32 = 1 << 1
	FlagArrow              uint32 = 1 << 2
	FlagMethod             uint32 = 1 << 3
	FlagStatic             uint32 = 1 << 4
	FlagClassConstructor   uint32 = 1 << 5
	FlagDefaultConstructor uint32 = 1 << 6
	FlagDerivedConstructor uint32 = 1 << 7
)

const (
	functionOrMethodMask = FlagAsync | FlagGenerator | FlagArrow | FlagMethod | FlagStatic
	constructorMask      = FlagClassConstructor | FlagDefaultConstructor | FlagDerivedConstructor
)

// FunctionKindToFlags encodes a function kind as a flag word. Kinds outside
// the supported set return ok=false.
func FunctionKindToFlags(kind runtime.FunctionKind) (uint32, bool) {
	switch kind {
	case runtime.KindNormalFunction, runtime.KindArrowFunction,
		runtime.KindGeneratorFunction, runtime.KindAsyncFunction,
		runtime.KindAsyncArrowFunction, runtime.KindAsyncGeneratorFunction,
		runtime.KindBaseConstructor, runtime.KindDefaultBaseConstructor,
		runtime.KindConciseMethod, runtime.KindAsyncConciseMethod:
	default:
		return 0, false
	}
	return traitFlags(kind), true
}

func traitFlags(kind runtime.FunctionKind) uint32 {
	var flags uint32
	if kind.IsAsync() {
		flags |= FlagAsync
	}
	if kind.IsGenerator() {
		flags |= FlagGenerator
	}
	if kind.IsArrow() {
		flags |= FlagArrow
	}
	if kind.IsMethod() {
		flags |= FlagMethod
	}
	if kind.IsStatic() {
		flags |= FlagStatic
	}
	if kind.IsClassConstructor() {
		flags |= FlagClassConstructor
	}
	if kind.IsDefaultConstructor() {
		flags |= FlagDefaultConstructor
	}
	if kind.IsDerivedConstructor() {
		flags |= FlagDerivedConstructor
	}
	return flags
}

// functionKindsByTraits indexes plain function/method kinds by
// async | generator<<1 | (arrow||static)<<2 | method<<3. Holes are trait
// combinations with no supported kind.
var functionKindsByTraits = [16]runtime.FunctionKind{
	runtime.KindNormalFunction,
	runtime.KindAsyncFunction,
	runtime.KindGeneratorFunction,
	runtime.KindAsyncGeneratorFunction,

	runtime.KindArrowFunction,
	runtime.KindAsyncArrowFunction,
	runtime.KindInvalidFunction, // arrow generator
	runtime.KindInvalidFunction, // async arrow generator

	runtime.KindConciseMethod,
	runtime.KindAsyncConciseMethod,
	runtime.KindInvalidFunction, // generator method
	runtime.KindInvalidFunction, // async generator method

	runtime.KindInvalidFunction, // static method
	runtime.KindInvalidFunction, // static async method
	runtime.KindInvalidFunction, // static generator method
	runtime.KindInvalidFunction, // static async generator method
}

// constructorKindsByTraits indexes constructor kinds by
// default | derived<<1.
var constructorKindsByTraits = [4]runtime.FunctionKind{
	runtime.KindBaseConstructor,
	runtime.KindDefaultBaseConstructor,
	runtime.KindDerivedConstructor,
	runtime.KindDefaultDerivedConstructor,
}

// FlagsToFunctionKind decodes a flag word back to a function kind. The
// mapping is a strict bijection: a word that the matched kind would not
// encode back to is rejected, not defaulted.
func FlagsToFunctionKind(flags uint32) (runtime.FunctionKind, bool) {
	var kind runtime.FunctionKind
	switch {
	case isFunctionOrMethod(flags):
		if flags&FlagArrow != 0 && flags&FlagMethod != 0 {
			return runtime.KindInvalidFunction, false
		}
		index := flags&FlagAsync | flags&FlagGenerator |
			boolBit(flags&(FlagArrow|FlagStatic) != 0)<<2 |
			flags&FlagMethod
		kind = functionKindsByTraits[index]
	case isConstructor(flags):
		index := (flags & (FlagDefaultConstructor | FlagDerivedConstructor)) >> 6
		kind = constructorKindsByTraits[index]
	default:
		return runtime.KindInvalidFunction, false
	}
	if kind == runtime.KindInvalidFunction || traitFlags(kind) != flags {
		return runtime.KindInvalidFunction, false
	}
	return kind, true
}

func isFunctionOrMethod(flags uint32) bool {
	return flags&functionOrMethodMask == flags
}

func isConstructor(flags uint32) bool {
	return flags&FlagClassConstructor != 0 && flags&constructorMask == flags
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
