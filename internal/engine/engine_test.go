package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/warden-dev/warden/internal/actionlog"
	"github.com/warden-dev/warden/internal/approval"
	"github.com/warden-dev/warden/internal/audit"
	"github.com/warden-dev/warden/internal/backup"
	"github.com/warden-dev/warden/internal/clog"
	"github.com/warden-dev/warden/internal/command"
	"github.com/warden-dev/warden/internal/commands"
	"github.com/warden-dev/warden/internal/executor"
	"github.com/warden-dev/warden/internal/prompt"
	"github.com/warden-dev/warden/internal/sandbox"
)

func TestMain(m *testing.M) {
	clog.Discard()
	os.Exit(m.Run())
}

type fixture struct {
	engine   *Engine
	session  uuid.UUID
	auditDir string
	prompter *prompt.MockYesNoPrompter
	exec     *executor.MockExecutor
}

// newFixture wires a full engine: builtin commands, mock executor,
// interactive approval backed by a mock prompter, backups and audit in
// temp dirs.
func newFixture(t *testing.T, answers ...bool) *fixture {
	t.Helper()

	reg := command.NewRegistry()
	mock := &executor.MockExecutor{Response: executor.Response{ExitCode: 0, Stdout: "ok\n"}}
	policy := sandbox.NewPolicy()
	if err := commands.RegisterBuiltins(reg, mock, policy); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}

	session := uuid.New()
	auditDir := t.TempDir()
	w, err := audit.NewWriter(auditDir, session)
	if err != nil {
		t.Fatalf("audit.NewWriter: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	prompter := prompt.NewMockYesNoPrompter(answers...)

	eng := New(Options{
		Registry: reg,
		Policy:   policy,
		Approver: &approval.InteractiveHandler{Prompter: prompter},
		Backups:  backup.NewManager(t.TempDir(), backup.RetentionConfig{}),
		Log:      actionlog.New(),
		Audit:    w,
	})

	return &fixture{engine: eng, session: session, auditDir: auditDir, prompter: prompter, exec: mock}
}

func (f *fixture) context(t *testing.T, level sandbox.Level) *command.Context {
	t.Helper()
	return &command.Context{
		Ctx:       context.Background(),
		SessionID: f.session,
		Workspace: t.TempDir(),
		Sandbox:   level,
	}
}

func (f *fixture) eventTypes(t *testing.T, commandID uuid.UUID) []audit.EventType {
	t.Helper()
	events, err := audit.NewQueryEngine(f.auditDir).Query(audit.Filter{CommandID: commandID})
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	types := make([]audit.EventType, len(events))
	for i, e := range events {
		types[i] = e.EventType
	}
	return types
}

func args(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return data
}

func TestExecute_WritePipeline(t *testing.T) {
	f := newFixture(t, true) // approve
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "hello.txt", Content: "hi",
	}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false, error: %s", res.Error)
	}

	// The file exists and the mutation was recorded for undo.
	if _, err := os.Stat(filepath.Join(cmdCtx.Workspace, "hello.txt")); err != nil {
		t.Errorf("written file missing: %v", err)
	}
	if !f.engine.ActionLog().CanUndo() {
		t.Error("action log recorded nothing")
	}

	// One command id threads the whole trail, in pipeline order.
	want := []audit.EventType{
		audit.EventCommandRequested,
		audit.EventPermissionCheck,
		audit.EventCommandPreview,
		audit.EventCommandApproved,
		audit.EventBackupCreated,
		audit.EventCommandCompleted,
		audit.EventFileOperation,
	}
	got := f.eventTypes(t, res.CommandID)
	if len(got) != len(want) {
		t.Fatalf("trail = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trail[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExecute_ReadOnlyShellDenied(t *testing.T) {
	f := newFixture(t)
	cmdCtx := f.context(t, sandbox.ReadOnly)

	res, err := f.engine.Execute("run", args(t, commands.RunArgs{Command: "echo hi"}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v (denial must be a result, not an error)", err)
	}
	if res.Success {
		t.Fatal("Success = true, want denial")
	}
	if !strings.Contains(res.Error, "read-only") {
		t.Errorf("Error = %q, want mention of read-only", res.Error)
	}
	if len(f.exec.Requests) != 0 {
		t.Error("denied command reached the executor")
	}

	got := f.eventTypes(t, res.CommandID)
	var sawViolation, sawCompleted bool
	for _, typ := range got {
		if typ == audit.EventSecurityViolation {
			sawViolation = true
		}
		if typ == audit.EventCommandCompleted {
			sawCompleted = true
		}
	}
	if !sawViolation {
		t.Errorf("trail %v missing security_violation", got)
	}
	if !sawCompleted {
		t.Errorf("trail %v does not resolve with command_completed", got)
	}
}

func TestExecute_DangerousCommandDeniedAtFullAccess(t *testing.T) {
	f := newFixture(t)
	cmdCtx := f.context(t, sandbox.FullAccess)

	res, err := f.engine.Execute("run", args(t, commands.RunArgs{Command: "rm -rf /"}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true, want denial")
	}
	if len(f.exec.Requests) != 0 {
		t.Error("dangerous command reached the executor")
	}
}

func TestExecute_ApprovalRejected(t *testing.T) {
	f := newFixture(t, false) // reject
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)

	res, err := f.engine.Execute("run", args(t, commands.RunArgs{Command: "echo hi"}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true, want rejection")
	}
	if len(f.exec.Requests) != 0 {
		t.Error("rejected command reached the executor")
	}

	got := f.eventTypes(t, res.CommandID)
	var sawRejected bool
	for _, typ := range got {
		if typ == audit.EventCommandRejected {
			sawRejected = true
		}
	}
	if !sawRejected {
		t.Errorf("trail %v missing command_rejected", got)
	}
}

func TestExecute_NoApprovalForReads(t *testing.T) {
	f := newFixture(t) // prompter would answer "no" by default-yes=false
	cmdCtx := f.context(t, sandbox.ReadOnly)

	target := filepath.Join(cmdCtx.Workspace, "r.txt")
	if err := os.WriteFile(target, []byte("data"), 0640); err != nil {
		t.Fatal(err)
	}

	res, err := f.engine.Execute("read", args(t, commands.ReadArgs{Path: "r.txt"}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false, error: %s", res.Error)
	}
	if len(f.prompter.Calls) != 0 {
		t.Errorf("read prompted for approval %d times, want 0", len(f.prompter.Calls))
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Execute("nope", nil, f.context(t, sandbox.WorkspaceWrite))
	if !errors.Is(err, command.ErrUnknownCommand) {
		t.Errorf("Execute(nope) = %v, want ErrUnknownCommand", err)
	}
}

func TestExecute_InvalidArgs(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.Execute("run", args(t, commands.RunArgs{Command: ""}), f.context(t, sandbox.WorkspaceWrite))
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Success {
		t.Error("Success = true, want validation failure")
	}
	if !strings.Contains(res.Error, "invalid arguments") {
		t.Errorf("Error = %q, want invalid arguments", res.Error)
	}
}

func TestExecute_PreviewOnly(t *testing.T) {
	f := newFixture(t)
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	cmdCtx.PreviewOnly = true

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "never.txt", Content: "x",
	}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false, error: %s", res.Error)
	}
	if _, err := os.Stat(filepath.Join(cmdCtx.Workspace, "never.txt")); !os.IsNotExist(err) {
		t.Error("preview-only run created the file")
	}
	if len(f.prompter.Calls) != 0 {
		t.Error("preview-only run asked for approval")
	}
	if !strings.Contains(res.Output, "never.txt") {
		t.Errorf("preview output %q does not describe the action", res.Output)
	}
}

func TestExecute_DryRunSkipsBackup(t *testing.T) {
	f := newFixture(t, true)
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	cmdCtx.DryRun = true

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "d.txt", Content: "x",
	}), cmdCtx)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false, error: %s", res.Error)
	}

	for _, typ := range f.eventTypes(t, res.CommandID) {
		if typ == audit.EventBackupCreated {
			t.Error("dry run created a backup")
		}
	}
}

func TestExecute_Cancelled(t *testing.T) {
	f := newFixture(t, true)
	f.exec.Response = executor.Response{ExitCode: -1, Cancelled: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	cmdCtx.Ctx = ctx

	_, err := f.engine.Execute("run", args(t, commands.RunArgs{Command: "sleep 10"}), cmdCtx)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Execute() = %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("ErrCancelled does not wrap context.Canceled")
	}
}

func TestUndoRedo_RoundTripOnDisk(t *testing.T) {
	f := newFixture(t, true, true)
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	target := filepath.Join(cmdCtx.Workspace, "doc.txt")

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "doc.txt", Content: "v1",
	}), cmdCtx)
	if err != nil || !res.Success {
		t.Fatalf("write failed: %v / %+v", err, res)
	}

	undone, err := f.engine.Undo(context.Background())
	if err != nil {
		t.Fatalf("Undo() error: %v", err)
	}
	if undone.After.Path != target {
		t.Errorf("undone path = %q, want %q", undone.After.Path, target)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("undo of a creation did not remove the file")
	}

	redone, err := f.engine.Redo(context.Background())
	if err != nil {
		t.Fatalf("Redo() error: %v", err)
	}
	if redone.ID != undone.ID {
		t.Errorf("Redo() returned %s, want %s", redone.ID, undone.ID)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("file missing after redo: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("content after redo = %q, want %q", got, "v1")
	}
}

func TestUndo_ModificationRestoresOldContent(t *testing.T) {
	f := newFixture(t, true)
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	target := filepath.Join(cmdCtx.Workspace, "cfg.txt")
	if err := os.WriteFile(target, []byte("old"), 0640); err != nil {
		t.Fatal(err)
	}

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "cfg.txt", Content: "new",
	}), cmdCtx)
	if err != nil || !res.Success {
		t.Fatalf("write failed: %v / %+v", err, res)
	}

	if _, err := f.engine.Undo(context.Background()); err != nil {
		t.Fatalf("Undo() error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Errorf("content after undo = %q, want %q", got, "old")
	}
}

func TestUndo_Empty(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.Undo(context.Background()); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() on empty log = %v, want ErrNothingToUndo", err)
	}
	if _, err := f.engine.Redo(context.Background()); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() on empty log = %v, want ErrNothingToRedo", err)
	}
}

func TestRollback_RestoresBackup(t *testing.T) {
	f := newFixture(t, true)
	cmdCtx := f.context(t, sandbox.WorkspaceWrite)
	target := filepath.Join(cmdCtx.Workspace, "state.txt")
	if err := os.WriteFile(target, []byte("before"), 0640); err != nil {
		t.Fatal(err)
	}

	res, err := f.engine.Execute("write", args(t, commands.WriteArgs{
		Path: "state.txt", Content: "after",
	}), cmdCtx)
	if err != nil || !res.Success {
		t.Fatalf("write failed: %v / %+v", err, res)
	}

	infos, err := f.engine.backups.List()
	if err != nil || len(infos) != 1 {
		t.Fatalf("List() = %v, %v; want one backup", infos, err)
	}

	if err := f.engine.Rollback(infos[0].ID); err != nil {
		t.Fatalf("Rollback() error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "before" {
		t.Errorf("content after rollback = %q, want %q", got, "before")
	}
}
