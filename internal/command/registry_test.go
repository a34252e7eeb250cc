package command

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/warden-dev/warden/internal/sandbox"
)

type stubRunner struct {
	desc Descriptor
}

func (s *stubRunner) Descriptor() *Descriptor                      { return &s.desc }
func (s *stubRunner) ValidateArgs(json.RawMessage) error           { return nil }
func (s *stubRunner) Preview(json.RawMessage, *Context) (*Preview, error) {
	return &Preview{}, nil
}
func (s *stubRunner) Execute(json.RawMessage, *Context) (*Result, error) {
	return &Result{Success: true}, nil
}

func stub(name string) *stubRunner {
	return &stubRunner{desc: Descriptor{Name: name}}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stub("diff")); err != nil {
		t.Fatalf("Register(diff) = %v", err)
	}

	runner, err := r.Get("diff")
	if err != nil {
		t.Fatalf("Get(diff) = %v", err)
	}
	if runner.Descriptor().Name != "diff" {
		t.Errorf("Descriptor().Name = %q, want %q", runner.Descriptor().Name, "diff")
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stub("run")); err != nil {
		t.Fatalf("Register(run) = %v", err)
	}

	err := r.Register(stub("run"))
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Errorf("second Register(run) = %v, want ErrDuplicateCommand", err)
	}
}

func TestRegistry_UnknownCommand(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nope")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Get(nope) = %v, want ErrUnknownCommand", err)
	}
}

func TestRegistry_EmptyNameRejected(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stub("")); err == nil {
		t.Error("Register with empty name = nil, want error")
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"write", "diff", "run", "read"} {
		if err := r.Register(stub(name)); err != nil {
			t.Fatalf("Register(%s) = %v", name, err)
		}
	}

	want := []string{"diff", "read", "run", "write"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestCanRunAt(t *testing.T) {
	tests := []struct {
		required sandbox.Level
		active   sandbox.Level
		want     bool
	}{
		{sandbox.ReadOnly, sandbox.ReadOnly, true},
		{sandbox.ReadOnly, sandbox.FullAccess, true},
		{sandbox.WorkspaceWrite, sandbox.ReadOnly, false},
		{sandbox.WorkspaceWrite, sandbox.WorkspaceWrite, true},
		{sandbox.FullAccess, sandbox.WorkspaceWrite, false},
		{sandbox.FullAccess, sandbox.FullAccess, true},
	}

	for _, tt := range tests {
		d := &Descriptor{Name: "t", RequiredLevel: tt.required}
		if got := CanRunAt(d, tt.active); got != tt.want {
			t.Errorf("CanRunAt(required=%s, active=%s) = %v, want %v",
				tt.required, tt.active, got, tt.want)
		}
	}
}
