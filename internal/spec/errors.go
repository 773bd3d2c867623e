package spec

import (
	"errors"
	"strings"
)

// ErrorCode categorizes errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError             ErrorCode = "InputError"
	NetworkError           ErrorCode = "NetworkError"
	ParseError             ErrorCode = "ParseError"
	UnsupportedVersion     ErrorCode = "UnsupportedVersion"
	InvalidSecurityMapping ErrorCode = "InvalidSecurityMapping"
)

var (
	// ErrUnsupportedVersion is returned when the document is not Swagger 2.0.
	ErrUnsupportedVersion = errors.New("unsupported swagger version")
	// ErrInvalidSecurityMapping is returned when a security scheme injects a
	// parameter whose location has no bucket on the operation.
	ErrInvalidSecurityMapping = errors.New("security parameter has no operation bucket")
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string {
	if e.JSONPointer == "" {
		return e.Message
	}
	return e.Message + " (at " + e.JSONPointer + ")"
}

func (e *SpecError) Unwrap() error { return e.Cause }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// jsonPointer builds a URI fragment JSON pointer from unescaped tokens.
func jsonPointer(tokens ...string) string {
	var b strings.Builder
	b.WriteString("#")
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(t))
	}
	return b.String()
}
