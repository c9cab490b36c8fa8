package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/flowcanvas/internal/app"
	"github.com/vk/flowcanvas/internal/cli"
)

// main is the entrypoint for the flowcanvas command.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW, errW io.Writer, args []string) error {
	config, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a, err := app.New(outW, errW, config)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(context.Background())
}
