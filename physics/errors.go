package physics

import "fmt"

// Kind classifies fatal simulation errors.
type Kind uint8

const (
	// KindConfig marks an invalid construction or step parameter.
	KindConfig Kind = iota + 1
	// KindCapacity marks a grid cell that ran out of slots during a rebucket.
	KindCapacity
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Stable error codes.
const (
	CodeInvalidConfig  uint32 = 0xd78eead8
	CodeInvalidWorkers uint32 = 0x620a358f
	CodeCellOverflow   uint32 = 0x4f62c1fa
)

// Error is a fatal simulation error. It is never recoverable within a step:
// callers are expected to log it and stop the simulation.
type Error struct {
	Code uint32
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("physics: %s error 0x%08x: %s", e.Kind, e.Code, e.Msg)
}

// Is matches errors of the same Kind, so errors.Is(err, ErrCapacity) works for
// any capacity error regardless of code and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == 0 || t.Code == e.Code)
}

var (
	// ErrConfig matches every configuration error.
	ErrConfig = &Error{Kind: KindConfig, Msg: "invalid configuration"}
	// ErrCapacity matches every cell capacity error.
	ErrCapacity = &Error{Kind: KindCapacity, Msg: "cell capacity exceeded"}
)

// ConfigError builds a configuration error for a named parameter.
func ConfigError(name string, value any) *Error {
	return &Error{
		Code: CodeInvalidConfig,
		Kind: KindConfig,
		Msg:  fmt.Sprintf("invalid config value %s=%v", name, value),
	}
}

func workersError(n int) *Error {
	return &Error{
		Code: CodeInvalidWorkers,
		Kind: KindConfig,
		Msg:  fmt.Sprintf("invalid workers count %d", n),
	}
}

func overflowError(x, y, z, capacity int) *Error {
	return &Error{
		Code: CodeCellOverflow,
		Kind: KindCapacity,
		Msg:  fmt.Sprintf("cell (%d,%d,%d) holds more than %d particles", x, y, z, capacity),
	}
}
