package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goforj/godump"
	"golang.org/x/term"
)

//
// Execute one complete program against the machine.  The instruction
// pointer is the only program-counter state: it moves forward by one
// on ordinary instructions, jumps forward over a skipped loop, or
// jumps backward on loop repetition.  Anything that is not one of the
// eight instruction bytes is a transparent comment.
//
// Bracket handling uses a backtracking stack of open-bracket positions
// rather than a precomputed jump table.  On loop repetition the top
// record is popped and the instruction pointer is set back onto the
// '[' itself, which re-runs the forward scan and re-pushes.  The
// repeated re-matching is idempotent for a fixed string, so this stays
// a stateless single pass over the program.
//
// An unmatched bracket aborts the invocation via runtimeError.  Tape
// mutations made before the error point stand; nothing after it runs.
// Abandoned jump records go away with the invocation
//

func execute(m *machine, prog string) {

	var jumpStack []int

	bfAssert(m != nil && m.page != nil, "execute with no machine")

	resetStatistics()

	initClock()

	g.interrupted = false
	g.running = true

	defer func() {
		g.running = false
	}()

	for ip := 0; ip < len(prog); ip++ {
		checkInterrupts()

		ch := prog[ip]

		if g.traceExec {
			traceStep(ip, ch, m)
		}

		switch ch {
		default:
			// transparent comment
			continue

		case '>':
			advance(m)

		case '<':
			retreat(m)

		case '+':
			increment(m)

		case '-':
			decrement(m)

		case '.':
			emit(m)

		case ',':
			accept(m)

		case '[':
			right := matchRight(prog, ip)

			runtimeCheck(right >= 0, ELEFTBRACKET)

			if tapeRead(m) == 0 {
				ip = right
			} else {
				jumpStack = append(jumpStack, ip)
			}

		case ']':
			runtimeCheck(len(jumpStack) != 0, ERIGHTBRACKET)

			top := jumpStack[len(jumpStack)-1]
			jumpStack = jumpStack[:len(jumpStack)-1]

			if tapeRead(m) != 0 {

				// land on the '[' so it re-runs its forward scan

				ip = top - 1
			}
		}

		s.numInstructions++
	}
}

//
// prog[left] is a '[';  scan to the right for the first ']' seen at
// nesting depth zero.  Returns -1 if there is none
//

func matchRight(prog string, left int) int {

	count := 0

	for i := left + 1; i < len(prog); i++ {
		switch prog[i] {
		case '[':
			count++

		case ']':
			if count != 0 {
				count--
			} else {
				return i
			}
		}
	}

	return -1
}

//
// The '.' and ',' instructions: one byte to the output collaborator,
// one byte from the input collaborator
//

func emit(m *machine) {

	b := [1]byte{tapeRead(m)}

	if _, err := m.out.Write(b[:]); err != nil {
		runtimeError("Write error (%s)", err.Error())
	}
}

func accept(m *machine) {

	b, ok := m.in.nextByte()
	if !ok {
		b = eofByte
	}

	tapeWrite(m, b)
}

func traceStep(ip int, ch byte, m *machine) {

	if strings.IndexByte(instructions, ch) < 0 {
		return
	}

	fmt.Printf("%6d  %c  cell %d = %d\n", ip, ch, cursorAddr(m), tapeRead(m))
}

//
// Read-loop commands.  A line matching one of these exactly is handled
// by the shell instead of the engine.  Command lines contain no
// instruction bytes, so a program could only ever have executed them
// as comments anyway
//

func runCommand(line string) bool {

	switch strings.TrimSpace(line) {
	default:
		return false

	case "bye":
		executeBye()

	case "cells":
		executeCells()

	case "dump":
		executeDump()

	case "help":
		executeHelp()

	case "reset":
		executeReset()

	case "stats":
		executeStats()

	case "trace":
		executeTrace()
	}

	return true
}

func executeBye() {

	g.exiting = true
}

func executeCells() {

	cols, _, err := term.GetSize(0)
	if err != nil || cols <= 0 {
		cols = 80
	}

	dumpCells(os.Stdout, g.mach, cols)
}

//
// Summary structure handed to godump by the 'dump' command.  Dumping
// the machine itself would drag the whole chunk tree along
//

type machineSummary struct {
	Chunks       int64
	Chunklen     int
	Cursor       int64
	Cell         byte
	Instructions int64
}

func executeDump() {

	var nchunks int64

	for c := chunkAvlTreeFirstInOrder(g.mach); c != nil; c = chunkAvlTreeNextInOrder(c) {
		nchunks++
	}

	godump.Dump(machineSummary{
		Chunks:       nchunks,
		Chunklen:     chunklen,
		Cursor:       cursorAddr(g.mach),
		Cell:         tapeRead(g.mach),
		Instructions: s.numInstructions,
	})
}

//
// Replace the machine wholesale.  This is the only way the tape is
// ever reset, and it happens on explicit user request only
//

func executeReset() {

	g.mach = newMachine()

	fmt.Println("Tape reset")
}

func executeStats() {

	g.printStats = !g.printStats

	fmt.Printf("toggling printStats %s\n", switchSetting(g.printStats))
}

func executeTrace() {

	g.traceExec = !g.traceExec

	fmt.Printf("toggling traceExec %s\n", switchSetting(g.traceExec))
}

func printStatistics() {

	if g.printStats {
		printCpuUsage()
		fmt.Printf("%d %s executed\n", s.numInstructions,
			pluralize("instruction", s.numInstructions))
	}
}

func resetStatistics() {

	s.utime = 0
	s.stime = 0
	s.numInstructions = 0
}
