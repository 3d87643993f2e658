package core

import "fmt"

// StreamOp names the stream operation that failed
type StreamOp string

const (
	OpRead  StreamOp = "read"
	OpWrite StreamOp = "write"
	OpFlush StreamOp = "flush"
)

// StreamError wraps an I/O failure from the input or output collaborator.
// Processing stops at the first StreamError; nothing is retried.
type StreamError struct {
	Op  StreamOp
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s stream: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
