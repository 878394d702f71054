package dedupe

import "fmt"

// Limit identifies which resource maximum was exceeded.
type Limit int

const (
	LimitLine Limit = iota
	LimitBlock
	LimitPending
)

// String returns a human-readable name for the limit.
func (l Limit) String() string {
	switch l {
	case LimitLine:
		return "line length"
	case LimitBlock:
		return "block size"
	case LimitPending:
		return "pending blocks"
	default:
		return "unknown"
	}
}

// LimitError is the fatal error raised when a resource limit is exceeded.
// Processing stops immediately and the offending block is never emitted,
// not even partially.
type LimitError struct {
	Limit Limit
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded (max %d)", e.Limit, e.Max)
}
