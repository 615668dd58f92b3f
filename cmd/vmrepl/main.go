// Command vmrepl drives a Translator interactively.
//
// It accepts commands on stdin, one per line:
//
//	read <addr>          translate addr and print the word stored there
//	write <addr> <value>  translate addr and store value there
//	stat                  print fault/hit/eviction counters
//	trace                 print the most recent translation records
//	reset                 reinitialize the translator, discarding all mappings
//	quit                  exit
//
// <addr> and <value> accept the same syntax as C's strtoul with base 0:
// decimal, or 0x-prefixed hex.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"biscuitvm/geom"
	"biscuitvm/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: vmrepl\n\nInteractive translator REPL; type \"help\" at the prompt for commands.\n")
	os.Exit(1)
}

func main() {
	if len(os.Args) != 1 {
		usage()
	}

	t := vm.New(geom.Default())
	p := message.NewPrinter(language.English)

	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("vmrepl> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			runCommand(t, p, line)
		}
		fmt.Print("vmrepl> ")
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}
}

func runCommand(t *vm.Translator, p *message.Printer, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "read":
		if len(fields) != 2 {
			fmt.Println("usage: read <addr>")
			return
		}
		addr, err := parseAddr(fields[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		var word int64
		if e := t.Read(addr, &word); e != 0 {
			fmt.Println(e)
			return
		}
		p.Printf("0x%x -> %d\n", addr, word)

	case "write":
		if len(fields) != 3 {
			fmt.Println("usage: write <addr> <value>")
			return
		}
		addr, err := parseAddr(fields[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		val, err := strconv.ParseInt(fields[2], 0, 64)
		if err != nil {
			fmt.Printf("invalid value %q\n", fields[2])
			return
		}
		if e := t.Write(addr, val); e != 0 {
			fmt.Println(e)
			return
		}
		p.Printf("0x%x <- %d\n", addr, val)

	case "stat":
		st := t.Stats()
		p.Printf("faults=%d hits=%d evicted_pages=%d\n", st.Faults.Load(), st.Hits.Load(), t.EvictedPages())

	case "trace":
		for _, r := range t.Trace() {
			evicted := ""
			if r.Evicted {
				evicted = " (evicted)"
			}
			p.Printf("0x%x -> 0x%x%s\n", r.Vaddr, r.Phys, evicted)
		}

	case "reset":
		t.Initialize()
		fmt.Println("reset")

	case "help":
		fmt.Println("read <addr> | write <addr> <value> | stat | trace | reset | quit")

	case "quit":
		os.Exit(0)

	default:
		fmt.Printf("unknown command %q; try \"help\"\n", fields[0])
	}
}

// parseAddr converts the supplied string into a uint64 address, accepting
// decimal or 0x-prefixed hexadecimal input.
func parseAddr(s string) (uint64, error) {
	a, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return a, nil
}
