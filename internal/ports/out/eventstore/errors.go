package eventstore

import "errors"

// ErrConcurrentAppend indicates another writer appended to the stream first.
var ErrConcurrentAppend = errors.New("concurrent append to stream")
