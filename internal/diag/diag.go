// Package diag prints firmware diagnostic lines.
//
// Without a sink, lines go to the builtin println. On the MCU the builtin
// writes to the USB CDC port, so once the shared USB channel exists the
// board installs it as the sink and diagnostics take the channel lock like
// every other writer.
package diag

import (
	"sync/atomic"

	"boardcore-go/x/conv"
)

var sink atomic.Pointer[func(line string)]

// SetSink routes diagnostics to fn; nil restores the builtin println.
// fn receives one line, terminated with CRLF.
func SetSink(fn func(line string)) {
	if fn == nil {
		sink.Store(nil)
		return
	}
	sink.Store(&fn)
}

// Println formats args separated by spaces, the way the builtin does, and
// emits one line. Task context only.
func Println(args ...any) {
	line := make([]byte, 0, 64)
	for i, a := range args {
		if i > 0 {
			line = append(line, ' ')
		}
		line = appendArg(line, a)
	}
	if fn := sink.Load(); fn != nil {
		(*fn)(string(append(line, '\r', '\n')))
		return
	}
	println(string(line))
}

func appendArg(b []byte, a any) []byte {
	switch v := a.(type) {
	case string:
		return append(b, v...)
	case error:
		return append(b, v.Error()...)
	case interface{ String() string }:
		return append(b, v.String()...)
	case bool:
		if v {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case int:
		return conv.AppendInt(b, int64(v))
	case int32:
		return conv.AppendInt(b, int64(v))
	case int64:
		return conv.AppendInt(b, v)
	case uint8:
		return conv.AppendUint(b, uint64(v))
	case uint16:
		return conv.AppendUint(b, uint64(v))
	case uint32:
		return conv.AppendUint(b, uint64(v))
	case uint64:
		return conv.AppendUint(b, v)
	case uint:
		return conv.AppendUint(b, uint64(v))
	default:
		return append(b, '?')
	}
}
