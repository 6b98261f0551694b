package log

import (
	"runtime"
	"sync"
)

const (
	// "goroutine 123 [running]:" fits comfortably.
	stackHeaderSize = 32
	goroutinePrefix = len("goroutine ")
)

var stackBufs = sync.Pool{
	New: func() any {
		buf := make([]byte, stackHeaderSize)
		return &buf
	},
}

// goroutineID parses the current goroutine number from the stack header.
func goroutineID() string {
	bufPtr, ok := stackBufs.Get().(*[]byte)
	if !ok {
		return "unknown"
	}
	defer stackBufs.Put(bufPtr)

	buf := *bufPtr
	n := runtime.Stack(buf, false)

	end := goroutinePrefix
	for end < n && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}
	if end == goroutinePrefix {
		return "unknown"
	}
	return string(buf[goroutinePrefix:end])
}
