package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/OpenGG/rspec-toggle/internal/cli"
	"github.com/OpenGG/rspec-toggle/internal/config"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func run(args []string) int {
	fs := afero.NewOsFs()
	root := cli.NewRootCommand(fs, config.NewLoader(fs), cli.NewPromptUIWithIO(os.Stdin, os.Stderr), os.Stdout, os.Stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
