package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenGG/rspec-toggle/internal/config"
	"github.com/OpenGG/rspec-toggle/internal/opener"
	"github.com/OpenGG/rspec-toggle/internal/toggle"
	"github.com/OpenGG/rspec-toggle/internal/toggle/paths"
)

var (
	getwd  = os.Getwd
	getenv = os.Getenv
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	roots []string
	debug bool
}

type toggleOptions struct {
	print bool
	yes   bool
}

// NewRootCommand constructs the root Cobra command for rspec-toggle.
func NewRootCommand(fs afero.Fs, loader *config.Loader, prompter Prompter, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	topts := &toggleOptions{}

	cmd := &cobra.Command{
		Use:           "rspec-toggle [file]",
		Short:         "Toggle between a Ruby file and its spec",
		Long:          "rspec-toggle opens the spec of an implementation file, or the implementation of a spec file, offering to create it when missing.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runToggle(fs, loader, prompter, opts, topts, args[0], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringArrayVar(&opts.roots, "root", nil, "Project root (repeatable, default: current directory)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Print resolution details to stderr")
	addToggleFlags(cmd, topts)

	cmd.AddCommand(newToggleCommand(fs, loader, prompter, opts, stdout, stderr))
	cmd.AddCommand(newWhichCommand(fs, loader, opts, stdout, stderr))
	cmd.AddCommand(newInitConfigCommand(loader, stdout))

	return cmd
}

func addToggleFlags(cmd *cobra.Command, topts *toggleOptions) {
	cmd.Flags().BoolVar(&topts.print, "print", false, "Print the counterpart path instead of launching an editor")
	cmd.Flags().BoolVarP(&topts.yes, "yes", "y", false, "Create missing files without asking")
}

func newToggleCommand(fs afero.Fs, loader *config.Loader, prompter Prompter, opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	topts := &toggleOptions{}
	cmd := &cobra.Command{
		Use:   "toggle <file>",
		Short: "Open the spec or implementation counterpart of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(fs, loader, prompter, opts, topts, args[0], stdout, stderr)
		},
	}
	addToggleFlags(cmd, topts)
	return cmd
}

func newWhichCommand(fs afero.Fs, loader *config.Loader, opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "which <file>",
		Short: "Show where the counterpart of a file is, without creating anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, roots, cfg, err := settingsFor(fs, loader, opts, args[0])
			if err != nil {
				return err
			}
			resolver := toggle.NewResolver(fs, nil, nil, newLogger(stderr, cfg.Debug || opts.debug))
			res, err := resolver.Resolve(file, roots)
			if err != nil {
				return err
			}
			printResolution(stdout, file, res)
			return nil
		},
	}
}

func newInitConfigCommand(loader *config.Loader, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a default global config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loader.WriteDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Wrote %s\n", path)
			return nil
		},
	}
}

func runToggle(fs afero.Fs, loader *config.Loader, prompter Prompter, opts *rootOptions, topts *toggleOptions, arg string, stdout, stderr io.Writer) error {
	file, roots, cfg, err := settingsFor(fs, loader, opts, arg)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.Debug || opts.debug)

	var open toggle.Opener
	if topts.print {
		open = opener.NewPrinter(stdout)
	} else {
		editor, err := opener.NewEditor(opener.ResolveCommand(cfg.Editor, getenv))
		if err != nil {
			return err
		}
		open = editor
	}

	resolver := toggle.NewResolver(fs, &confirmer{prompter: prompter, assumeYes: topts.yes}, open, logger)
	outcome, err := resolver.Toggle(file, roots)
	if err != nil {
		return err
	}
	logger.Debug("toggle finished", "action", outcome.Action.String(), "path", outcome.Path)
	if outcome.Action == toggle.ActionCreated {
		fmt.Fprintf(stderr, "Created %s\n", outcome.Path)
	}
	return nil
}

// settingsFor makes file absolute, loads config and returns the roots to try.
// Explicit --root flags replace the working directory; config roots are appended.
func settingsFor(fs afero.Fs, loader *config.Loader, opts *rootOptions, arg string) (string, []string, config.Config, error) {
	wd, err := getwd()
	if err != nil {
		return "", nil, config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	file := absFrom(wd, arg)

	roots := make([]string, 0, len(opts.roots)+1)
	for _, r := range opts.roots {
		roots = append(roots, absFrom(wd, r))
	}
	if len(roots) == 0 {
		roots = append(roots, wd)
	}

	cfg, err := loader.Load("")
	if err != nil {
		return "", nil, config.Config{}, err
	}
	for _, r := range cfg.Roots {
		roots = append(roots, absFrom(wd, r))
	}

	if root, ok := paths.SelectRoot(file, roots); ok {
		cfg, err = loader.Load(root)
		if err != nil {
			return "", nil, config.Config{}, err
		}
		for _, r := range cfg.Roots {
			if abs := absFrom(wd, r); !contains(roots, abs) {
				roots = append(roots, abs)
			}
		}
	}
	return file, roots, cfg, nil
}

func absFrom(wd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(wd, p)
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printResolution(w io.Writer, file string, res toggle.Resolution) {
	fmt.Fprintf(w, "file:     %s\n", file)
	fmt.Fprintf(w, "root:     %s\n", res.Root)
	fmt.Fprintf(w, "relative: %s\n", res.Relative)
	fmt.Fprintf(w, "kind:     %s\n", res.Kind)
	if res.Kind == toggle.KindSpec {
		fmt.Fprintf(w, "base:     %s\n", res.BasePath)
		fmt.Fprintf(w, "candidates: %s\n", strings.Join(res.Candidates, ", "))
	} else {
		fmt.Fprintf(w, "rails:    %t\n", res.Rails)
		fmt.Fprintf(w, "pattern:  %s\n", res.Pattern)
		for _, m := range res.Matches {
			fmt.Fprintf(w, "match:    %s\n", m)
		}
		fmt.Fprintf(w, "template: %q\n", res.Template)
	}
	if res.Target != "" {
		fmt.Fprintf(w, "target:   %s\n", res.Target)
	}
	fmt.Fprintf(w, "exists:   %t\n", res.Exists)
}

// confirmer adapts a Prompter to toggle.Confirmer. A cancelled prompt counts as "no".
type confirmer struct {
	prompter  Prompter
	assumeYes bool
}

func (c *confirmer) Confirm(message string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	ok, err := c.prompter.Confirm(message, false)
	if err != nil {
		if errors.Is(err, ErrPromptCancelled) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
