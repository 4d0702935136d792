package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTracer is implemented by errors created with github.com/pkg/errors.
type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the stack trace of the deepest error in the chain that
// carries one, or nil.
func stackTrace(err error) errors.StackTrace {
	var st errors.StackTrace
	for err != nil {
		if s, ok := err.(stackTracer); ok {
			st = s.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return trimInternal(st)
}

// trimInternal drops frames that belong to this package or to the runtime so
// that the trace starts where the error was created.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && matchesFunc(st[0], "pact/errors.Wrap", "pact/errors.(*Error).New") {
		st = st[1:]
	}
	for len(st) > 0 && matchesFunc(st[len(st)-1], "runtime.") {
		st = st[:len(st)-1]
	}
	return st
}

func matchesFunc(f errors.Frame, prefixes ...string) bool {
	name := funcName(f)
	for _, p := range prefixes {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func funcName(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func fileLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

// Format works like pkg/errors, with additions.
//   %s is just the error message
//   %+v is the full stack trace
//   %v appends a compressed [filename:line] where the error was created
func (e *wrappedError) Format(s fmt.State, verb rune) {
	st := stackTrace(e)
	switch {
	case verb == 'v' && s.Flag('+'):
		io.WriteString(s, e.Error())
		fmt.Fprintf(s, "%+v", st)
	case verb == 'v' && len(st) > 0:
		file, line := fileLine(st[0])
		// cut file at "github.com/"
		if chunks := strings.SplitN(file, "github.com/", 2); len(chunks) == 2 {
			file = chunks[1]
		}
		fmt.Fprintf(s, "%s [%s:%d]", e.Error(), file, line)
	default:
		io.WriteString(s, e.Error())
	}
}
