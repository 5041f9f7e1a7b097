package opener

import (
	"bytes"
	"errors"
	"os/exec"
	"testing"
)

func TestPrinterOpen(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf)
	if err := p.Open("/proj/lib/foo.rb"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if buf.String() != "/proj/lib/foo.rb\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestNewEditorEmpty(t *testing.T) {
	if _, err := NewEditor("   "); !errors.Is(err, ErrNoEditor) {
		t.Fatalf("expected ErrNoEditor, got %v", err)
	}
}

func TestEditorCommand(t *testing.T) {
	e, err := NewEditor("code  -r")
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	got := e.Command("/proj/spec/foo_spec.rb")
	want := []string{"code", "-r", "/proj/spec/foo_spec.rb"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEditorOpenRunsCommand(t *testing.T) {
	e, err := NewEditor("vim")
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	var ran *exec.Cmd
	e.run = func(c *exec.Cmd) error {
		ran = c
		return nil
	}
	if err := e.Open("/proj/lib/foo.rb"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ran == nil || len(ran.Args) != 2 || ran.Args[1] != "/proj/lib/foo.rb" {
		t.Fatalf("unexpected command: %+v", ran)
	}
}

func TestEditorOpenError(t *testing.T) {
	e, err := NewEditor("vim")
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	boom := errors.New("exit status 1")
	e.run = func(*exec.Cmd) error { return boom }
	if err := e.Open("/x.rb"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestResolveCommand(t *testing.T) {
	env := map[string]string{"VISUAL": "", "EDITOR": "nano"}
	getenv := func(k string) string { return env[k] }

	if got := ResolveCommand("subl -w", getenv); got != "subl -w" {
		t.Fatalf("configured editor should win, got %q", got)
	}
	if got := ResolveCommand("", getenv); got != "nano" {
		t.Fatalf("expected $EDITOR fallback, got %q", got)
	}
	env["VISUAL"] = "code -w"
	if got := ResolveCommand("", getenv); got != "code -w" {
		t.Fatalf("expected $VISUAL to win over $EDITOR, got %q", got)
	}
	if got := ResolveCommand("", func(string) string { return "" }); got != "" {
		t.Fatalf("expected empty command, got %q", got)
	}
}

func TestNewEditorSplitsOnWhitespace(t *testing.T) {
	e, err := NewEditor("/Applications/Sublime Text.app/subl")
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	got := e.Command("/proj/lib/foo.rb")
	if len(got) != 3 || got[0] != "/Applications/Sublime" || got[1] != "Text.app/subl" {
		t.Fatalf("expected the command to be split on whitespace, got %v", got)
	}
}
