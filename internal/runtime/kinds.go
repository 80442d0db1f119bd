package runtime

// FunctionKind classifies functions and class constructors. Only the kinds
// listed here can be captured in a snapshot.
type FunctionKind uint8

const (
	KindInvalidFunction FunctionKind = iota
	KindNormalFunction
	KindArrowFunction
	KindGeneratorFunction
	KindAsyncFunction
	KindAsyncArrowFunction
	KindAsyncGeneratorFunction
	KindConciseMethod
	KindAsyncConciseMethod
	KindBaseConstructor
	KindDefaultBaseConstructor
	KindDerivedConstructor
	KindDefaultDerivedConstructor
)

// IsAsync reports whether the kind is an async variant.
func (k FunctionKind) IsAsync() bool {
	switch k {
	case KindAsyncFunction, KindAsyncArrowFunction, KindAsyncGeneratorFunction, KindAsyncConciseMethod:
		return true
	}
	return false
}

// IsGenerator reports whether the kind is a generator variant.
func (k FunctionKind) IsGenerator() bool {
	return k == KindGeneratorFunction || k == KindAsyncGeneratorFunction
}

// IsArrow reports whether the kind is an arrow function variant.
func (k FunctionKind) IsArrow() bool {
	return k == KindArrowFunction || k == KindAsyncArrowFunction
}

// IsMethod reports whether the kind is a concise method variant.
func (k FunctionKind) IsMethod() bool {
	return k == KindConciseMethod || k == KindAsyncConciseMethod
}

// IsStatic reports whether the kind is a static method variant. No static
// kind is currently in the supported set; the predicate exists because the
// wire flag word reserves a bit for it.
func (k FunctionKind) IsStatic() bool {
	return false
}

// IsClassConstructor reports whether the kind is any constructor variant.
func (k FunctionKind) IsClassConstructor() bool {
	switch k {
	case KindBaseConstructor, KindDefaultBaseConstructor, KindDerivedConstructor, KindDefaultDerivedConstructor:
		return true
	}
	return false
}

// IsDefaultConstructor reports whether the kind is a synthesized default
// constructor.
func (k FunctionKind) IsDefaultConstructor() bool {
	return k == KindDefaultBaseConstructor || k == KindDefaultDerivedConstructor
}

// IsDerivedConstructor reports whether the kind is a derived-class
// constructor.
func (k FunctionKind) IsDerivedConstructor() bool {
	return k == KindDerivedConstructor || k == KindDefaultDerivedConstructor
}

func (k FunctionKind) String() string {
	switch k {
	case KindNormalFunction:
		return "function"
	case KindArrowFunction:
		return "arrow"
	case KindGeneratorFunction:
		return "generator"
	case KindAsyncFunction:
		return "async"
	case KindAsyncArrowFunction:
		return "async-arrow"
	case KindAsyncGeneratorFunction:
		return "async-generator"
	case KindConciseMethod:
		return "method"
	case KindAsyncConciseMethod:
		return "async-method"
	case KindBaseConstructor:
		return "constructor"
	case KindDefaultBaseConstructor:
		return "default-constructor"
	case KindDerivedConstructor:
		return "derived-constructor"
	case KindDefaultDerivedConstructor:
		return "default-derived-constructor"
	default:
		return "invalid"
	}
}

// ContextKind classifies lexical scopes.
type ContextKind uint8

const (
	// ContextFunction is a function activation scope.
	ContextFunction ContextKind = iota
	// ContextBlock is a block scope.
	ContextBlock
	// ContextScript is a top-level script scope. Script scopes are never
	// serialized; they terminate parent chains.
	ContextScript
)

func (k ContextKind) String() string {
	switch k {
	case ContextFunction:
		return "function"
	case ContextBlock:
		return "block"
	case ContextScript:
		return "script"
	default:
		return "unknown"
	}
}
