package main

import (
	"fmt"
)

func executeHelp() {

	fmt.Println("Any line that is not a command below is executed as a")
	fmt.Println("complete program.  The tape persists between lines.")
	fmt.Println()
	fmt.Println("bye    - exit from bfin")
	fmt.Println("cells  - show the allocated tape around the cursor")
	fmt.Println("dump   - dump the interpreter state")
	fmt.Println("help   - print this text")
	fmt.Println("reset  - discard the tape and start over")
	fmt.Println("stats  - toggle printing execution statistics")
	fmt.Println("trace  - toggle tracing of instruction execution")
}
