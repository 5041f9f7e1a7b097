package opener

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned when no editor command is configured.
var ErrNoEditor = errors.New("no editor configured (set editor in config, $VISUAL or $EDITOR)")

// Printer "opens" a file by writing its path, one per line. Editor
// integrations that open the file themselves use it.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Open writes path to the underlying writer.
func (p *Printer) Open(path string) error {
	_, err := fmt.Fprintln(p.w, path)
	return err
}

// Editor opens files by running an editor command with the path appended.
type Editor struct {
	command []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	run     func(*exec.Cmd) error
}

// NewEditor creates an Editor from a command line such as "code -r".
// The command is split on whitespace; quoting is not interpreted.
func NewEditor(command string) (*Editor, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoEditor
	}
	return &Editor{
		command: fields,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		run:     func(c *exec.Cmd) error { return c.Run() },
	}, nil
}

// ResolveCommand picks the editor command: configured first, then $VISUAL, then $EDITOR.
func ResolveCommand(configured string, getenv func(string) string) string {
	if c := strings.TrimSpace(configured); c != "" {
		return c
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if c := strings.TrimSpace(getenv(key)); c != "" {
			return c
		}
	}
	return ""
}

// Command returns the argv used to open path.
func (e *Editor) Command(path string) []string {
	argv := make([]string, 0, len(e.command)+1)
	argv = append(argv, e.command...)
	return append(argv, path)
}

// Open runs the editor on path attached to the terminal.
func (e *Editor) Open(path string) error {
	argv := e.Command(path)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if err := e.run(cmd); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
