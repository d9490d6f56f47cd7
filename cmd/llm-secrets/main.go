package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	// Child exit codes pass through silently; everything else is reported.
	var ee *exitError
	if !errors.As(err, &ee) || ee.err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	}
	os.Exit(exitCodeFor(err))
}
