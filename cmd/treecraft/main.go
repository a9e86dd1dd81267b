package main

import (
	"fmt"
	"os"

	"github.com/treecraft/treecraft/internal/cli"
	"github.com/treecraft/treecraft/internal/utils"
)

// main is the entry point for the treecraft command.
func main() {
	executionError := cli.Execute()
	if executionError != nil {
		fmt.Fprintf(os.Stderr, utils.ErrorLogFormat+"\n", executionError)
	}
	os.Exit(cli.ExitCodeFor(executionError))
}
