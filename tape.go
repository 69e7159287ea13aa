package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danswartzendruber/avl"
	"github.com/tklauser/go-sysconf"
)

//
// The tape is modeled as an arena of fixed-size chunks hung off an
// AVL tree keyed by a signed chunk index, with the origin chunk at
// index 0.  A set of wrapper routines hides the AVL interface from
// the rest of the interpreter
//

func chunkAvlTreeFirstInOrder(m *machine) *chunk {

	p := avl.AvlTreeFirstInOrder(m.chunks)
	if p != nil {
		return p.(*chunk)
	} else {
		return nil
	}
}

func chunkAvlTreeNextInOrder(c *chunk) *chunk {

	p := avl.AvlTreeNextInOrder(&c.avl)
	if p != nil {
		return p.(*chunk)
	} else {
		return nil
	}
}

func chunkAvlTreeLookup(m *machine, index int64) *chunk {

	p := avl.AvlTreeLookup(m.chunks, index, cmpInt64Key)
	if p != nil {
		return p.(*chunk)
	} else {
		return nil
	}
}

func chunkAvlTreeInsert(m *machine, c *chunk) {

	p := avl.AvlTreeInsert(&m.chunks, &c.avl, c, cmpInt64Chunk)
	if p != nil {
		fatalError("Chunk %d already in tree???", c.index)
	}
}

func cmpInt64Key(key any, node any) int {

	return cmpInt64Items(key.(int64), node.(*chunk).index)
}

func cmpInt64Chunk(node1, node2 any) int {

	return cmpInt64Items(node1.(*chunk).index, node2.(*chunk).index)
}

func cmpInt64Items(item1, item2 int64) int {

	if item1 < item2 {
		return -1
	} else if item1 > item2 {
		return 1
	} else {
		return 0
	}
}

//
// Compute the usable chunk length: one page minus a small reserved
// margin.  If the system has a really small page size, don't shrink it
//

func initChunklen() {

	pagesize, err := sysconf.Sysconf(sysconf.SC_PAGESIZE)
	if err != nil {
		crash(fmt.Sprintf("Unable to read the system page size (%v)", err))
	}

	chunklen = int(pagesize) - chunkReserve

	if chunklen <= 0 {
		chunklen += chunkReserve
	}
}

//
// Create a machine with a single zeroed chunk.  The cursor starts at
// the middle of it, so early leftward and rightward movement do not
// immediately force growth in either direction
//

func newMachine() *machine {

	m := &machine{in: &linerInput{}, out: os.Stdout}

	m.page = allocChunk(m, 0)
	m.offset = chunklen / 2

	return m
}

func allocChunk(m *machine, index int64) *chunk {

	c := &chunk{mem: make([]byte, chunklen), index: index}

	chunkAvlTreeInsert(m, c)

	return c
}

//
// Fetch the chunk at the given index, allocating it on first touch
//

func fetchChunk(m *machine, index int64) *chunk {

	if c := chunkAvlTreeLookup(m, index); c != nil {
		return c
	}

	return allocChunk(m, index)
}

//
// Cursor movement.  A move that would leave the current chunk shifts
// onto the neighbor at the corresponding boundary offset, growing the
// tape if the neighbor does not exist yet
//

func advance(m *machine) {

	m.offset++

	if m.offset >= chunklen {
		m.page = fetchChunk(m, m.page.index+1)
		m.offset = 0
	}
}

func retreat(m *machine) {

	m.offset--

	if m.offset < 0 {
		m.page = fetchChunk(m, m.page.index-1)
		m.offset = chunklen - 1
	}
}

//
// Cell arithmetic.  Native 8-bit wraparound is a semantic guarantee
// of the language, not an error
//

func increment(m *machine) {

	m.page.mem[m.offset]++
}

func decrement(m *machine) {

	m.page.mem[m.offset]--
}

func tapeRead(m *machine) byte {

	return m.page.mem[m.offset]
}

func tapeWrite(m *machine, b byte) {

	m.page.mem[m.offset] = b
}

//
// The cursor's logical cell address, with cell 0 being the initial
// cursor position
//

func cursorAddr(m *machine) int64 {

	return m.page.index*int64(chunklen) + int64(m.offset) -
		int64(chunklen/2)
}

//
// Read a cell by logical address without growing the tape.  Returns
// false for cells on chunks that were never allocated
//

func peekCell(m *machine, addr int64) (byte, bool) {

	pos := addr + int64(chunklen/2)
	index := floorDiv(pos, int64(chunklen))

	c := chunkAvlTreeLookup(m, index)
	if c == nil {
		return 0, false
	}

	return c.mem[pos-index*int64(chunklen)], true
}

//
// Integer division rounding toward negative infinity, so cell
// addresses left of the origin map onto negative chunk indices
//

func floorDiv(a, b int64) int64 {

	q := a / b

	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

//
// Print a summary of the allocated tape plus a window of cells around
// the cursor, sized to the given display width.  The cursor cell is
// bracketed
//

func dumpCells(w io.Writer, m *machine, width int) {

	var nchunks int64

	for c := chunkAvlTreeFirstInOrder(m); c != nil; c = chunkAvlTreeNextInOrder(c) {
		nchunks++
	}

	fmt.Fprintf(w, "%d %s of %d bytes, cursor at cell %d\n",
		nchunks, pluralize("chunk", nchunks), chunklen, cursorAddr(m))

	for c := chunkAvlTreeFirstInOrder(m); c != nil; c = chunkAvlTreeNextInOrder(c) {
		var nonzero int64

		for _, b := range c.mem {
			if b != 0 {
				nonzero++
			}
		}

		fmt.Fprintf(w, "chunk %4d: %d nonzero %s\n",
			c.index, nonzero, pluralize("byte", nonzero))
	}

	//
	// Each cell takes 5 columns ("[255]" in the worst case)
	//

	ncells := width / 5
	if ncells < 1 {
		ncells = 1
	}

	cursor := cursorAddr(m)

	for addr := cursor - int64(ncells/2); addr < cursor-int64(ncells/2)+int64(ncells); addr++ {
		v, _ := peekCell(m, addr)

		if addr == cursor {
			fmt.Fprintf(w, "[%3d]", v)
		} else {
			fmt.Fprintf(w, " %3d ", v)
		}
	}

	fmt.Fprintln(w)
}
