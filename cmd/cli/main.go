package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethe/numagroup/internal/app"
	"github.com/ethe/numagroup/internal/cli"
	"github.com/ethe/numagroup/internal/hcladapter"
)

// main is the entrypoint for the numagroup CLI.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
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
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader := hcladapter.NewLoader()
	return app.NewApp(outW, cfg, loader).Run(context.Background())
}
