package dispatch

import "errors"

// ErrClosed is returned by Await and Run once the queue is closed and empty.
var ErrClosed = errors.New("dispatch queue closed")
