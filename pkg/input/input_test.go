package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scriptedSource plays back canned responses, standing in for the terminal.
type scriptedSource struct {
	responses [][]byte
	prompts   []string
}

func (s *scriptedSource) ReadSecret(prompt string) ([]byte, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

func TestCollect(t *testing.T) {
	src := &scriptedSource{responses: [][]byte{[]byte("hunter2")}}
	c := NewCollector(src)

	value, err := c.Collect("Enter value (hidden): ")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if string(value) != "hunter2" {
		t.Errorf("unexpected value %q", value)
	}
	if len(src.prompts) != 1 || src.prompts[0] != "Enter value (hidden): " {
		t.Errorf("unexpected prompts: %v", src.prompts)
	}
}

func TestCollectRejectsEmpty(t *testing.T) {
	c := NewCollector(&scriptedSource{responses: [][]byte{{}}})

	if _, err := c.Collect("Enter value: "); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
}

func TestCollectConfirmed(t *testing.T) {
	c := NewCollector(&scriptedSource{responses: [][]byte{
		[]byte("hunter2"),
		[]byte("hunter2"),
	}})

	value, err := c.CollectConfirmed("Enter value: ", "Confirm value: ")
	if err != nil {
		t.Fatalf("CollectConfirmed failed: %v", err)
	}
	if string(value) != "hunter2" {
		t.Errorf("unexpected value %q", value)
	}
}

func TestCollectConfirmedMismatch(t *testing.T) {
	c := NewCollector(&scriptedSource{responses: [][]byte{
		[]byte("hunter2"),
		[]byte("hunter3"),
	}})

	_, err := c.CollectConfirmed("Enter value: ", "Confirm value: ")
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	// Neither value may leak through the error message.
	if strings.Contains(err.Error(), "hunter") {
		t.Errorf("error message leaked the entered value: %v", err)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.txt")
	if err := os.WriteFile(path, []byte("  sk-abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	value, err := FromFile(path, false)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if string(value) != "sk-abc123" {
		t.Errorf("expected trimmed value, got %q", value)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("source file should still exist: %v", err)
	}
}

func TestFromFileDeleteAfterRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.txt")
	if err := os.WriteFile(path, []byte("sk-abc123"), 0o600); err != nil {
		t.Fatal(err)
	}

	value, err := FromFile(path, true)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if string(value) != "sk-abc123" {
		t.Errorf("unexpected value %q", value)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("source file should have been deleted")
	}
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.txt"), false)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}
