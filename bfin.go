package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"runtime/pprof"
	"syscall"
)

//
// Tricky: init is called under the hood by the GO runtime when
// we fire up, so there are no visible calls to it!
//

func init() {

	initChunklen()
}

func main() {

	var prog string
	var haveProg bool

	//
	// We need to close the Liner instances in reverse order, to make
	// sure we end up back in normal (cooked) terminal mode
	//

	defer func() {
		cleanupLiners()
	}()

	switch len(os.Args) {
	default:
		crash("Usage: bfin [program]")

	case 1:
		// nothing to do

	case 2:
		prog, haveProg = readProgramFile(os.Args[1])
	}

	checkTerminal()

	setupLiners()

	//
	// Run the signal handling code in a goroutine
	//

	go sigHdlr()

	printVersionInfo()

	//
	// The one and only tape.  It is mutated by every invocation and
	// survives until the process exits; only the 'reset' command
	// replaces it
	//

	g.mach = newMachine()

	//
	// If a file was named on the command line, its contents are the
	// first program.  Whatever it leaves on the tape is visible to
	// the interactive lines that follow
	//

	if haveProg {
		invoke(prog)
	}

	//
	// Keep on getting lines of code and executing them.  Every line
	// must be a complete, independently valid program
	//

	for !g.exiting {
		line, eof := readLine(g.parserLiner, myPrompt, true)
		if eof {
			break
		}

		if runCommand(line) {
			continue
		}

		invoke(line)
	}
}

//
// One engine invocation, fenced by the panic recovery wrapper so a
// bad program reports its diagnostic and hands control back with the
// tape intact
//

func invoke(prog string) {

	call(func() {
		execute(g.mach, prog)

		printStatistics()
	})
}

func printVersionInfo() {

	if buildTimestampStr != "" {
		fmt.Printf("bfin version %s - built %s\n", VERSION, buildTimestampStr)
	} else {
		fmt.Printf("bfin version %s\n", VERSION)
	}
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := (os.O_CREATE | os.O_WRONLY)

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		iErr := err.(*os.PathError)
		fmt.Fprintf(os.Stderr, "Unable to open %s (%s)\n",
			name, iErr.Err.Error())
		return
	}

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)

	m := fmt.Sprintf("Dumping goroutine stacks to %v and exiting", name)

	crash(m)
}

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGQUIT)
	signal.Notify(ch, syscall.SIGINT)

	for {
		sig := <-ch

		switch sig {

		default:
			crash(fmt.Sprintf("Unexpected signal %d", sig))

		case syscall.SIGQUIT:
			writeGoroutineStacks() // does not return

		case syscall.SIGINT:

			//
			// Posted, not acted on: the execute loop polls this
			// between instructions, so the interrupt lands at an
			// instruction boundary and the tape is never left
			// half-mutated.  ^C at a prompt is the liner's problem,
			// not ours
			//

			if g.running {
				g.interrupted = true
			}
		}
	}
}

//
// This procedure is called by the panic deferred recovery function.
// Three cases: a recoverable invocation error (bad brackets, ^C),
// an interpreter bug raised by fatalError, and implicit panics from
// the Go runtime itself
//

func decodePanic(e any) {

	switch e := e.(type) {
	default:
		fmt.Printf("%v\n", e)

		debug.PrintStack()

	case *runtimeErrorInfo:
		fmt.Println(e.msg)

		printStatistics()

	case *internalErrorInfo:
		fmt.Printf("%q at %s line %d\n", e.msg, filepath.Base(e.file), e.line)

		debug.PrintStack()
	}
}

//
// Wrapper routine for a function.  We need this so that panic calls
// can be caught and decoded before returning to our caller
//

func call(f func()) {

	defer func() {
		err := recover()
		if err != nil {
			decodePanic(err)
		}
	}()

	f()
}
