package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danswartzendruber/liner"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"
)

//
// Ensure we are connected to a tty!
//

func checkTerminal() {

	if !term.IsTerminal(2) {
		crash("")
	}

	if !term.IsTerminal(0) {
		crash("Standard input must be a terminal")
	}

	if !term.IsTerminal(1) {
		crash("Standard output must be a terminal")
	}
}

//
// We create two Liner instances.  One for the program prompt, and one
// for bytes requested by the ',' instruction.  We do this because we
// want a scrollback history for programs, but not for program input.
// We need to create and destroy them in LIFO order, as the Close
// method is documented as 'restoring the terminal to its previous
// state'.  This means that if we create the parser instance, and then
// the 'input' instance, the terminal state will go normal => raw =>
// raw.  If we then Close them in reverse order, we will see
// raw => raw => normal
//

func setupLiners() {
	g.parserLiner = setupLiner(false)
	g.inputLiner = setupLiner(true)
}

func setupLiner(allowCtrlC bool) *liner.State {

	l := liner.NewLiner()

	l.SetMultiLineMode(allowCtrlC)

	return l
}

func cleanupLiners() {
	cleanupLiner(&g.inputLiner)
	cleanupLiner(&g.parserLiner)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// Read a line from the terminal, with editing and history.  The liner
// package grows its buffer internally, so a line can be arbitrarily
// long.  The second return value is true on end of input (^D)
//

func readLine(l *liner.State, prompt string, history bool) (string, bool) {

	s, err := l.Prompt(prompt)

	if err != nil {
		switch err {
		default:
			crash(fmt.Sprintf("readLine error: %q", err))

		case io.EOF:
			return "", true

		case liner.ErrPromptAborted:

			//
			// ^C at the program prompt just yields a fresh prompt.
			// ^C at a ',' input prompt aborts the invocation the
			// same way ^C during execution would
			//

			if l == g.inputLiner {
				runtimeError(EINTERRUPTED)
			}

			return "", false
		}
	}

	if history && s != "" {
		l.AppendHistory(s)
	}

	return s, false
}

//
// The interactive input collaborator for ','.  Bytes are served from
// the current line; when it runs dry we prompt for another, with the
// newline delivered as part of the stream
//

func (in *linerInput) nextByte() (byte, bool) {

	if len(in.buf) == 0 {
		line, eof := readLine(g.inputLiner, inputPrompt, false)
		if eof {
			return 0, false
		}

		in.buf = append([]byte(line), '\n')
	}

	b := in.buf[0]
	in.buf = in.buf[1:]

	return b, true
}

func (in *readerInput) nextByte() (byte, bool) {

	var one [1]byte

	if _, err := io.ReadFull(in.r, one[:]); err != nil {
		return 0, false
	}

	return one[0], true
}

//
// Read a whole program file.  An open failure is reported but is not
// fatal; the read loop must still come up
//

func readProgramFile(filename string) (string, bool) {

	contents, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "IO Error: Could not open %q\n", filename)
		return "", false
	}

	return string(contents), true
}

//
// Check to see if sigHdlr has posted an interrupt
//

func checkInterrupts() {

	if g.interrupted {
		g.interrupted = false
		runtimeError(EINTERRUPTED)
	}
}

func switchSetting(b bool) string {

	if b {
		return "ON"
	} else {
		return "OFF"
	}
}

func pluralize(str string, anum any) string {

	var num int64
	retString := str

	switch anum := anum.(type) {
	default:
		fatalError("Unexpected type %T", anum)

	case int:
		num = int64(anum)

	case int64:
		num = anum
	}

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		retString += "s"
	}

	return retString
}

//
// Initialize the clock
//

func initClock() {

	s.elapsed = time.Now()
	s.utime, s.stime = getCPUInfo(1)
}

func printCpuUsage() {

	elapsed := time.Since(s.elapsed)
	utime, stime := getCPUInfo(1)

	fmt.Printf("CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

func getCPUInfo(divisor int64) (int64, int64) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		panic(err)
	} else {
		clktck /= divisor
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		panic(err)
	}

	fields := strings.Fields(string(contents))

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		panic(err)
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		panic(err)
	}

	return utime / clktck, stime / clktck
}

//
// Print a fatal message and abort the process.  We write to standard
// error, since the user may have redirected standard output, and we
// would not see it then.  Also, dup os.Stdout, then close os.Stdout
// and os.Stderr in case another goroutine is writing to the terminal.
// Make sure to call cleanupLiners, so the terminal state is sane
//

func crash(msg string) {

	var w *os.File

	cleanupLiners()

	if msg != "" {
		fd, err := syscall.Dup(int(os.Stderr.Fd()))
		if err == nil {
			os.Stdout.Close()
			os.Stderr.Close()
			w = os.NewFile(uintptr(fd), "stdout on new fd")
		} else {
			w = os.Stderr
		}

		fmt.Fprintln(w, msg)
	}

	os.Exit(1)
}
