package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var status *statusError
	if errors.As(err, &status) {
		if status.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", status.err)
		}
		return status.code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitErr
}
