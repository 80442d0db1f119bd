package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a websnap error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "WS-REF-4041")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; two DomainErrors match when their
// codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Header errors (HDR)
// ============================================================================

var (
	// ErrInvalidMagic indicates the buffer does not start with the
	// snapshot magic number.
	ErrInvalidMagic = NewDomainError("WS-HDR-4000", "invalid magic number")
)

// ============================================================================
// Table errors (TBL)
// ============================================================================

var (
	// ErrMalformedStringTable indicates a bad or oversized string count.
	ErrMalformedStringTable = NewDomainError("WS-TBL-4010", "malformed string table")

	// ErrMalformedShapeTable indicates a bad or oversized shape count.
	ErrMalformedShapeTable = NewDomainError("WS-TBL-4011", "malformed shape table")

	// ErrMalformedContextTable indicates a bad or oversized context count.
	ErrMalformedContextTable = NewDomainError("WS-TBL-4012", "malformed context table")

	// ErrMalformedFunctionTable indicates a bad or oversized function count.
	ErrMalformedFunctionTable = NewDomainError("WS-TBL-4013", "malformed function table")

	// ErrMalformedArrayTable indicates a bad or oversized array count.
	ErrMalformedArrayTable = NewDomainError("WS-TBL-4014", "malformed array table")

	// ErrMalformedObjectTable indicates a bad or oversized object count.
	ErrMalformedObjectTable = NewDomainError("WS-TBL-4015", "malformed object table")

	// ErrMalformedClassTable indicates a bad or oversized class count.
	ErrMalformedClassTable = NewDomainError("WS-TBL-4016", "malformed class table")

	// ErrMalformedExportTable indicates a bad or oversized export count.
	ErrMalformedExportTable = NewDomainError("WS-TBL-4017", "malformed export table")
)

// ============================================================================
// Record errors (REC)
// ============================================================================

var (
	// ErrMalformedString indicates a truncated or invalid string record.
	ErrMalformedString = NewDomainError("WS-REC-4020", "malformed string")

	// ErrMalformedShape indicates a truncated or invalid shape record.
	ErrMalformedShape = NewDomainError("WS-REC-4021", "malformed shape")

	// ErrMalformedContext indicates a truncated or invalid context record.
	ErrMalformedContext = NewDomainError("WS-REC-4022", "malformed context")

	// ErrMalformedFunction indicates a truncated or invalid function record.
	ErrMalformedFunction = NewDomainError("WS-REC-4023", "malformed function")

	// ErrMalformedArray indicates a truncated or invalid array record.
	ErrMalformedArray = NewDomainError("WS-REC-4024", "malformed array")

	// ErrMalformedObject indicates a truncated or invalid object record.
	ErrMalformedObject = NewDomainError("WS-REC-4025", "malformed object")

	// ErrMalformedValue indicates a truncated or invalid serialized value.
	ErrMalformedValue = NewDomainError("WS-REC-4026", "malformed value")

	// ErrInvalidFunctionFlags indicates a function flags word outside the
	// encodable set.
	ErrInvalidFunctionFlags = NewDomainError("WS-REC-4027", "invalid function flags")

	// ErrMalformedRegexp indicates a regexp with invalid flags.
	ErrMalformedRegexp = NewDomainError("WS-REC-4028", "malformed regexp")
)

// ============================================================================
// Unsupported feature errors (SUP)
// ============================================================================

var (
	// ErrUnsupportedValue indicates a live value outside the supported subset.
	ErrUnsupportedValue = NewDomainError("WS-SUP-4030", "unsupported value")

	// ErrUnsupportedPropertyKey indicates a non-string property key.
	ErrUnsupportedPropertyKey = NewDomainError("WS-SUP-4031", "property key is not a string")

	// ErrUnsupportedArray indicates a sparse or holey array.
	ErrUnsupportedArray = NewDomainError("WS-SUP-4032", "unsupported array")

	// ErrUnsupportedPrototype indicates a non-object prototype.
	ErrUnsupportedPrototype = NewDomainError("WS-SUP-4033", "unsupported prototype")

	// ErrUnsupportedContextKind indicates a context kind outside
	// FUNCTION/BLOCK.
	ErrUnsupportedContextKind = NewDomainError("WS-SUP-4034", "unsupported context kind")

	// ErrUnsupportedFunctionKind indicates a function kind with no flag
	// encoding.
	ErrUnsupportedFunctionKind = NewDomainError("WS-SUP-4035", "unsupported function kind")

	// ErrMultipleScripts indicates functions spanning more than one script.
	ErrMultipleScripts = NewDomainError("WS-SUP-4036", "cannot include functions from multiple scripts")

	// ErrFunctionWithoutSource indicates a function with no source text.
	ErrFunctionWithoutSource = NewDomainError("WS-SUP-4037", "function without source code")

	// ErrDictionaryModeObject indicates an object without a shared shape.
	ErrDictionaryModeObject = NewDomainError("WS-SUP-4038", "dictionary mode objects not supported")

	// ErrExportNotProduced indicates export-name evaluation yielded no value.
	ErrExportNotProduced = NewDomainError("WS-SUP-4039", "exported value not found")
)

// ============================================================================
// Reference errors (REF)
// ============================================================================

var (
	// ErrBadStringRef indicates a string id at/beyond the declared count.
	ErrBadStringRef = NewDomainError("WS-REF-4040", "string id out of bounds")

	// ErrBadShapeRef indicates a shape id at/beyond the declared count.
	ErrBadShapeRef = NewDomainError("WS-REF-4041", "shape id out of bounds")

	// ErrBadContextRef indicates a context id at/beyond the declared count.
	ErrBadContextRef = NewDomainError("WS-REF-4042", "context id out of bounds")

	// ErrBadFunctionRef indicates a function id at/beyond the declared count.
	ErrBadFunctionRef = NewDomainError("WS-REF-4043", "function id out of bounds")

	// ErrBadArrayRef indicates an array id at/beyond the declared count.
	ErrBadArrayRef = NewDomainError("WS-REF-4044", "array id out of bounds")

	// ErrBadObjectRef indicates an object id at/beyond the declared count.
	ErrBadObjectRef = NewDomainError("WS-REF-4045", "object id out of bounds")

	// ErrBadClassRef indicates a class id at/beyond the declared count.
	ErrBadClassRef = NewDomainError("WS-REF-4046", "class id out of bounds")

	// ErrInvalidDeferredRef indicates a forward reference with no
	// destination slot.
	ErrInvalidDeferredRef = NewDomainError("WS-REF-4047", "invalid deferred reference")

	// ErrPrototypeReuse indicates two functions claiming one prototype, or
	// one shape resolving to two prototypes.
	ErrPrototypeReuse = NewDomainError("WS-REF-4048", "can't reuse function prototype")
)

// ============================================================================
// Usage errors (USE)
// ============================================================================

var (
	// ErrSerializerReuse indicates a second encode on one serializer.
	ErrSerializerReuse = NewDomainError("WS-USE-4090", "can't reuse snapshot serializer")

	// ErrDeserializerReuse indicates a second decode on one deserializer.
	ErrDeserializerReuse = NewDomainError("WS-USE-4091", "can't reuse snapshot deserializer")
)

// ============================================================================
// Resource errors (RES)
// ============================================================================

var (
	// ErrTooManyItems indicates an entity count above the item ceiling.
	ErrTooManyItems = NewDomainError("WS-RES-5000", "too many items")

	// ErrTooManyProperties indicates a shape above the property ceiling.
	ErrTooManyProperties = NewDomainError("WS-RES-5001", "too many properties")

	// ErrAllocation indicates an allocation failure in the host heap.
	ErrAllocation = NewDomainError("WS-RES-5002", "allocation failed")
)

// ============================================================================
// Store errors (STOR)
// ============================================================================

var (
	// ErrStoreInvalidContainer indicates a corrupt snapshot container file.
	ErrStoreInvalidContainer = NewDomainError("WS-STOR-4000", "invalid snapshot container")

	// ErrStoreChecksum indicates a container checksum mismatch.
	ErrStoreChecksum = NewDomainError("WS-STOR-4001", "container checksum mismatch")

	// ErrStoreCipher indicates the container needs a cipher the caller
	// did not supply, or decryption failed.
	ErrStoreCipher = NewDomainError("WS-STOR-4010", "container cipher error")

	// ErrStoreNotFound indicates the requested snapshot does not exist.
	ErrStoreNotFound = NewDomainError("WS-STOR-4040", "snapshot not found")
)
