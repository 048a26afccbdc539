// cmd/tools/motor-cli/main.go
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		help(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "calc":
		err = runCalc(args[1:], stdout)
	case "match":
		err = runMatch(args[1:], stdout)
	case "report":
		err = runReport(args[1:], stdout)
	case "catalog":
		err = runCatalog(args[1:], stdout)
	case "registry":
		err = runRegistry(args[1:], stdout)
	case "help", "-h", "--help":
		help(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		help(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func help(w io.Writer) {
	fmt.Fprintln(w, `Usage: motor-cli <command> [flags]

Commands:
  calc       vehicle speed, force and wheel size -> motor requirements and suggestions
  match      required rpm and torque -> ranked suggestions
  report     like calc, but writes a PDF report
  catalog    list | export | import | seed | index | invalidate
  registry   list | validate

Run "motor-cli <command> -h" for the flags of a command.`)
}
