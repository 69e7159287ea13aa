package main

import (
	"io"
	"time"

	"github.com/danswartzendruber/avl"
	"github.com/danswartzendruber/liner"
)

//
// Constants
//

const VERSION = "1.0.0"

const myPrompt = "bfin: "

const inputPrompt = "? "

//
// Leave room for the allocator's per-block overhead, so a chunk plus
// its bookkeeping still fits in a single page
//

const chunkReserve = 32

//
// The byte stored by ',' once the input collaborator is exhausted.
// This is (char)EOF mapped into the byte domain
//

const eofByte = 0xff

const instructions = "><+-.,[]"

//
// Type definitions
//

//
// A chunk of tape memory.  Chunks live in an AVL tree keyed by their
// signed index relative to the origin chunk, so the tape can grow
// without bound in either direction while neighbor lookup stays cheap.
// Chunks are only ever created next to the cursor, which means the
// allocated indices always form a contiguous range, and an in-order
// walk of the tree visits the tape left to right
//

type chunk struct {
	avl   avl.AvlNode
	mem   []byte
	index int64
}

//
// Source of bytes for the ',' instruction.  The second return value
// is false once the source is exhausted
//

type byteSource interface {
	nextByte() (byte, bool)
}

//
// Interactive input source.  Buffers one terminal line at a time,
// newline included
//

type linerInput struct {
	buf []byte
}

//
// In-memory input source, used by the tests
//

type readerInput struct {
	r io.Reader
}

//
// The engine state: the chunk tree, the cursor (page + offset) and
// the two I/O collaborators.  Created once at process start and passed
// to every invocation; never implicitly reset, since interactive
// sessions rely on the tape persisting between lines
//

type machine struct {
	chunks *avl.AvlNode
	page   *chunk
	offset int
	in     byteSource
	out    io.Writer
}

//
// Error structures thrown via panic.  runtimeErrorInfo aborts only
// the current invocation; internalErrorInfo is an interpreter bug
//

type runtimeErrorInfo struct {
	msg string
}

type internalErrorInfo struct {
	msg  string
	file string
	line int
}

//
// Global variables
//

//
// The usable size of a chunk of tape memory on this system.
// Computed once at startup, immutable for the process lifetime
//

var chunklen int

var buildTimestampStr string

//
// This structure contains persistent interpreter state
//

var g struct {
	mach        *machine
	parserLiner *liner.State
	inputLiner  *liner.State
	exiting     bool
	interrupted bool
	running     bool
	printStats  bool
	traceExec   bool
}

//
// Runtime statistics for the current invocation
//

var s struct {
	elapsed         time.Time
	utime           int64
	stime           int64
	numInstructions int64
}
