package main

import (
	"fmt"
	"runtime"
)

//
// Manifest constants for the diagnostics an invocation can produce.
// Only the two bracket forms can fail; everything else (arithmetic
// wraparound, pointer growth) is never an error by design
//

const (
	ELEFTBRACKET  = "'[' with no matching ']'"
	ERIGHTBRACKET = "']' with no matching '['"
	EINTERRUPTED  = "Interrupted"
)

//
// Two kinds of failure here.  runtimeError aborts only the current
// invocation: the panic is caught by the call() wrapper, the message
// is printed, and the tape plus the read loop carry on as if the
// failed invocation had ended at the error point.  fatalError is for
// interpreter bugs; it records the caller's file and line the way a
// failed assertion would.  Genuine allocation failure has no recovery
// path at all - the Go runtime aborts the process with a diagnostic,
// which is exactly the contract for an out-of-memory tape
//

func runtimeError(f string, args ...any) {

	panic(&runtimeErrorInfo{msg: fmt.Sprintf(f, args...)})
}

func fatalError(f string, args ...any) {

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		crash("Unable to find caller frame!")
	}

	panic(&internalErrorInfo{msg: fmt.Sprintf(f, args...),
		file: file, line: line})
}

//
// A couple of handy 'assert' functions
//

func bfAssert(chk bool, msg string) {

	if !chk {
		fatalError(msg)
	}
}

func runtimeCheck(chk bool, f string, args ...any) {

	if !chk {
		runtimeError(f, args...)
	}
}
