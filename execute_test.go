package main

import (
	"bytes"
	"strings"
	"testing"
)

//
// Build a machine wired to in-memory collaborators
//

func testMachine(input string) (*machine, *bytes.Buffer) {

	out := &bytes.Buffer{}

	m := newMachine()
	m.in = &readerInput{r: strings.NewReader(input)}
	m.out = out

	return m, out
}

//
// Run one invocation, turning an invocation-scoped error back into a
// return value.  Anything else thrown is a genuine test failure
//

func run(t *testing.T, m *machine, prog string) (msg string) {

	t.Helper()

	defer func() {
		if e := recover(); e != nil {
			re, ok := e.(*runtimeErrorInfo)
			if !ok {
				panic(e)
			}
			msg = re.msg
		}
	}()

	execute(m, prog)

	return ""
}

func mustRun(t *testing.T, m *machine, prog string) {

	t.Helper()

	if msg := run(t, m, prog); msg != "" {
		t.Fatalf("%q failed: %s", prog, msg)
	}
}

func TestArithmetic(t *testing.T) {

	tests := []struct {
		prog string
		want byte
	}{
		{strings.Repeat("+", 5), 5},
		{strings.Repeat("+", 255), 255},
		{strings.Repeat("+", 256), 0},
		{strings.Repeat("+", 300), 44},
		{"-", 255},
		{"+++---", 0},
	}

	for _, tt := range tests {
		m, _ := testMachine("")

		mustRun(t, m, tt.prog)

		if b := tapeRead(m); b != tt.want {
			t.Errorf("%d ops: cell = %d, want %d", len(tt.prog), b, tt.want)
		}
	}
}

func TestMoveRoundTrip(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, "+++++")

	//
	// Far enough to cross several chunk boundaries in each direction
	//

	right := strings.Repeat(">", chunklen*2)
	left := strings.Repeat("<", chunklen*2)

	mustRun(t, m, right+"+"+left)

	if b := tapeRead(m); b != 5 {
		t.Errorf("cell after round trip = %d, want 5", b)
	}

	mustRun(t, m, left+"++"+right)

	if b := tapeRead(m); b != 5 {
		t.Errorf("cell after left round trip = %d, want 5", b)
	}

	mustRun(t, m, right)

	if b := tapeRead(m); b != 1 {
		t.Errorf("far right cell = %d, want 1", b)
	}
}

func TestClearLoop(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, strings.Repeat("+", 41)+"[-]")

	if b := tapeRead(m); b != 0 {
		t.Errorf("cell after [-] = %d, want 0", b)
	}

	//
	// On a cell already 0 the loop body must never run
	//

	m, out := testMachine("")

	mustRun(t, m, "[.]")

	if out.Len() != 0 {
		t.Errorf("skipped loop produced output %q", out.String())
	}
}

func TestNestedLoops(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, "++>++<[[-]>]")

	if b, _ := peekCell(m, 0); b != 0 {
		t.Errorf("cell 0 = %d, want 0", b)
	}

	if b, _ := peekCell(m, 1); b != 0 {
		t.Errorf("cell 1 = %d, want 0", b)
	}

	if addr := cursorAddr(m); addr != 2 {
		t.Errorf("cursor at %d, want 2", addr)
	}
}

func TestCountingLoop(t *testing.T) {

	//
	// 6 * 7: the classic nested add
	//

	m, _ := testMachine("")

	mustRun(t, m, "++++++[>+++++++<-]>")

	if b := tapeRead(m); b != 42 {
		t.Errorf("6 * 7 = %d, want 42", b)
	}
}

func TestUnmatchedLeftBracket(t *testing.T) {

	//
	// The two '+' before the offending '[' must have taken effect;
	// the '+' after it must not execute
	//

	m, _ := testMachine("")

	if msg := run(t, m, "++[+"); msg != ELEFTBRACKET {
		t.Fatalf("error = %q, want %q", msg, ELEFTBRACKET)
	}

	if b := tapeRead(m); b != 2 {
		t.Errorf("cell = %d, want 2", b)
	}

	//
	// A '[' with no ']' is an error even when the cell is zero and
	// the body would have been skipped
	//

	m, _ = testMachine("")

	if msg := run(t, m, "["); msg != ELEFTBRACKET {
		t.Fatalf("error = %q, want %q", msg, ELEFTBRACKET)
	}
}

func TestUnmatchedRightBracket(t *testing.T) {

	m, _ := testMachine("")

	if msg := run(t, m, "+]+"); msg != ERIGHTBRACKET {
		t.Fatalf("error = %q, want %q", msg, ERIGHTBRACKET)
	}

	if b := tapeRead(m); b != 1 {
		t.Errorf("cell = %d, want 1", b)
	}

	m, _ = testMachine("")

	if msg := run(t, m, "]"); msg != ERIGHTBRACKET {
		t.Fatalf("error = %q, want %q", msg, ERIGHTBRACKET)
	}
}

//
// A failed invocation must leave the tape usable: the next invocation
// behaves as if the failed one had simply stopped at its error point
//

func TestErrorPreservesTape(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, "+++")

	if msg := run(t, m, "]"); msg != ERIGHTBRACKET {
		t.Fatalf("error = %q, want %q", msg, ERIGHTBRACKET)
	}

	mustRun(t, m, "+")

	if b := tapeRead(m); b != 4 {
		t.Errorf("cell = %d, want 4", b)
	}
}

func TestTapePersistsAcrossInvocations(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, "+++")
	mustRun(t, m, "+++")

	if b := tapeRead(m); b != 6 {
		t.Errorf("cell = %d, want 6", b)
	}

	mustRun(t, m, ">++")
	mustRun(t, m, "<")

	if b := tapeRead(m); b != 6 {
		t.Errorf("cell 0 = %d, want 6", b)
	}

	if b, _ := peekCell(m, 1); b != 2 {
		t.Errorf("cell 1 = %d, want 2", b)
	}
}

func TestComments(t *testing.T) {

	m, out := testMachine("")

	mustRun(t, m, "say hi to the tape (it will not mind)")

	if out.Len() != 0 {
		t.Errorf("comments produced output %q", out.String())
	}

	if b := tapeRead(m); b != 0 {
		t.Errorf("comments mutated the tape: cell = %d", b)
	}

	if addr := cursorAddr(m); addr != 0 {
		t.Errorf("comments moved the cursor to %d", addr)
	}
}

func TestInputOutput(t *testing.T) {

	m, out := testMachine("Go!")

	mustRun(t, m, ",.,.,.")

	if got := out.String(); got != "Go!" {
		t.Errorf("output = %q, want %q", got, "Go!")
	}
}

func TestInputEOFSentinel(t *testing.T) {

	m, _ := testMachine("")

	mustRun(t, m, ",")

	if b := tapeRead(m); b != eofByte {
		t.Errorf("cell after EOF = %d, want %d", b, eofByte)
	}

	//
	// The source stays exhausted
	//

	mustRun(t, m, "-,")

	if b := tapeRead(m); b != eofByte {
		t.Errorf("cell after second EOF = %d, want %d", b, eofByte)
	}
}

func TestHelloWorld(t *testing.T) {

	m, out := testMachine("")

	mustRun(t, m, "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]"+
		">>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.")

	if got := out.String(); got != "Hello World!\n" {
		t.Errorf("output = %q, want %q", got, "Hello World!\n")
	}
}

func TestMatchRight(t *testing.T) {

	tests := []struct {
		prog string
		left int
		want int
	}{
		{"[]", 0, 1},
		{"[[]]", 0, 3},
		{"[[]]", 1, 2},
		{"[+-]", 0, 3},
		{"[", 0, -1},
		{"[[]", 0, -1},
		{"[]]", 0, 1},
		{"[ comment ]", 0, 10},
	}

	for _, tt := range tests {
		if got := matchRight(tt.prog, tt.left); got != tt.want {
			t.Errorf("matchRight(%q, %d) = %d, want %d",
				tt.prog, tt.left, got, tt.want)
		}
	}
}

//
// An input source that posts an interrupt, standing in for sigHdlr.
// The execute loop must abort at the next instruction boundary with
// the ',' store already applied
//

type interruptingInput struct{}

func (interruptingInput) nextByte() (byte, bool) {

	g.interrupted = true

	return 'x', true
}

func TestInterruptAbortsInvocation(t *testing.T) {

	m, _ := testMachine("")
	m.in = interruptingInput{}

	if msg := run(t, m, ",++"); msg != EINTERRUPTED {
		t.Fatalf("error = %q, want %q", msg, EINTERRUPTED)
	}

	if b := tapeRead(m); b != 'x' {
		t.Errorf("cell = %d, want %d", b, 'x')
	}

	if g.interrupted {
		t.Error("interrupt flag still posted")
	}

	//
	// The next invocation runs normally
	//

	m.in = &readerInput{r: strings.NewReader("")}

	mustRun(t, m, "+")

	if b := tapeRead(m); b != 'x'+1 {
		t.Errorf("cell = %d, want %d", b, 'x'+1)
	}
}

func TestRunCommand(t *testing.T) {

	g.mach = newMachine()

	defer func() {
		g.mach = nil
		g.exiting = false
		g.traceExec = false
		g.printStats = false
	}()

	if runCommand("+++") {
		t.Error("program line taken as a command")
	}

	if runCommand("") {
		t.Error("empty line taken as a command")
	}

	if !runCommand("bye") {
		t.Error("bye not recognized")
	}

	if !g.exiting {
		t.Error("bye did not set the exiting flag")
	}

	if !runCommand("  trace  ") {
		t.Error("surrounding whitespace not trimmed")
	}

	if !g.traceExec {
		t.Error("trace did not toggle traceExec")
	}

	g.traceExec = false
}
