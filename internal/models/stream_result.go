package models

// StreamResult is one item of a result stream: a value, or the error that ended
// the stream. Producers send at most one item with Err set, as the last one.
type StreamResult[T any] struct {
	Value T
	Err   error
}
