package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// testCLI isolates the CLI from the user's config and returns a function
// that runs commands against a fresh database.
func testCLI(t *testing.T) func(args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	unsetEnv(t, "PT_DB")
	unsetEnv(t, "PT_DEV")

	path := filepath.Join(t.TempDir(), "pt.db")
	return func(args ...string) (string, error) {
		return executeCommand(append(args, "--db", path)...)
	}
}

func mustRun(t *testing.T, run func(args ...string) (string, error), args ...string) string {
	t.Helper()
	out, err := run(args...)
	if err != nil {
		t.Fatalf("pt %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCommentWorkflow(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "user", "add", "Other", "other@example.com")
	mustRun(t, run, "project", "add", "Website")
	out := mustRun(t, run, "target", "add", "task", "1", "Fix", "login", "--project", "1")
	if !strings.Contains(out, "Task:1 added.") {
		t.Errorf("target add output = %q", out)
	}

	out = mustRun(t, run, "comment", "add", "task:1", "done", "--user", "2", "--hours", "1h 30m")
	if !strings.Contains(out, "Comment #1 added to Task:1.") {
		t.Errorf("comment add output = %q", out)
	}
	if !strings.Contains(out, "Hours: 1.5h") || !strings.Contains(out, "Logged to project #1.") {
		t.Errorf("comment add output = %q, want hours and activity", out)
	}

	out = mustRun(t, run, "target", "show", "task:1")
	for _, want := range []string{"Comments:  1", "Watchers:  #1, #2", "Private:   no"} {
		if !strings.Contains(out, want) {
			t.Errorf("target show output %q missing %q", out, want)
		}
	}

	out = mustRun(t, run, "activity", "1")
	if !strings.Contains(out, "create Comment #1") {
		t.Errorf("activity output = %q", out)
	}

	out = mustRun(t, run, "project", "hours", "1")
	if !strings.Contains(out, "Task_1") || !strings.Contains(out, "Total: 1.5h") {
		t.Errorf("project hours output = %q", out)
	}

	out = mustRun(t, run, "comment", "list", "task:1", "--format", "json")
	var listed []struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decoding comment list: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0].Body != "done" || listed[0].User.Email != "other@example.com" {
		t.Errorf("listed = %+v", listed)
	}

	mustRun(t, run, "comment", "edit", "1", "done,", "really")
	out = mustRun(t, run, "comment", "list", "task:1")
	if !strings.Contains(out, "done, really") {
		t.Errorf("comment list output = %q", out)
	}

	mustRun(t, run, "comment", "delete", "1")
	out = mustRun(t, run, "activity", "1")
	if !strings.Contains(out, "No activity.") {
		t.Errorf("activity after delete = %q", out)
	}
}

func TestCommentDuplicateRejected(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "target", "add", "conversation", "1", "Standup")
	mustRun(t, run, "comment", "add", "conversation:1", "same", "thing")

	_, err := run("comment", "add", "conversation:1", "same", "thing")
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want duplicate error", err)
	}

	mustRun(t, run, "comment", "add", "conversation:1", "same", "thing", "--importing")
}

func TestCommentBodyRequired(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "target", "add", "conversation", "1", "Standup")
	mustRun(t, run, "target", "add", "task", "1", "Chore")

	_, err := run("comment", "add", "conversation:1")
	if err == nil || !strings.Contains(err.Error(), "body can't be blank") {
		t.Errorf("err = %v, want blank body error", err)
	}

	mustRun(t, run, "comment", "add", "task:2", "--hours", "15m")
	mustRun(t, run, "comment", "add", "conversation:1", "--doc", "Notes=https://example.com/notes")
	mustRun(t, run, "comment", "add", "conversation:1", "--upload", "board.png:2048")
}

func TestSimpleConversationRemovedWithLastComment(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "target", "add", "conversation", "1", "Quick question", "--simple")
	mustRun(t, run, "comment", "add", "conversation:1", "anyone around?")
	mustRun(t, run, "comment", "delete", "1")

	if _, err := run("target", "show", "conversation:1"); err == nil {
		t.Error("expected simple conversation to be deleted with its last comment")
	}
}

func TestPrivateCommentByOwner(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "user", "add", "Other", "other@example.com")
	mustRun(t, run, "user", "add", "Third", "third@example.com")
	mustRun(t, run, "target", "add", "task", "1", "Budget")
	mustRun(t, run, "comment", "add", "task:1", "looping in", "--user", "3")

	mustRun(t, run, "comment", "add", "task:1", "salaries", "--private", "--private-to", "1,2")

	out := mustRun(t, run, "target", "show", "task:1")
	if !strings.Contains(out, "Private:   yes") || !strings.Contains(out, "Watchers:  #1, #2") {
		t.Errorf("target show output = %q", out)
	}

	// Someone else's comment cannot make the task public again.
	mustRun(t, run, "comment", "add", "task:1", "ok", "--user", "2", "--public")
	out = mustRun(t, run, "target", "show", "task:1")
	if !strings.Contains(out, "Private:   yes") {
		t.Errorf("target show output = %q, want still private", out)
	}
}

func TestUploadAttachedByID(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "target", "add", "page", "1", "Wiki")
	out := mustRun(t, run, "upload", "add", "diagram.svg", "900")
	if !strings.Contains(out, "Upload #1 registered") {
		t.Errorf("upload add output = %q", out)
	}

	mustRun(t, run, "comment", "add", "page:1", "--upload-id", "1")
	out = mustRun(t, run, "comment", "list", "page:1")
	if !strings.Contains(out, "diagram.svg (900 bytes) #1") {
		t.Errorf("comment list output = %q", out)
	}

	if _, err := run("comment", "add", "page:1", "again", "--upload-id", "1"); err == nil {
		t.Error("expected error attaching an upload twice")
	}
}

func TestHoursCommand(t *testing.T) {
	run := testCLI(t)

	tests := []struct {
		in   string
		want string
	}{
		{"2h 30m", "2.5h"},
		{"2:30", "2.5h"},
		{"45m", "0.75h"},
		{"abc", "0h"},
	}
	for _, tt := range tests {
		out := mustRun(t, run, "hours", tt.in)
		if strings.TrimSpace(out) != tt.want {
			t.Errorf("hours %q = %q, want %q", tt.in, strings.TrimSpace(out), tt.want)
		}
	}
}

func TestUserRemoveKeepsComments(t *testing.T) {
	run := testCLI(t)

	mustRun(t, run, "user", "add", "Owner", "owner@example.com")
	mustRun(t, run, "user", "add", "Leaver", "leaver@example.com")
	mustRun(t, run, "target", "add", "note", "1", "Retro")
	mustRun(t, run, "comment", "add", "note:1", "bye all", "--user", "2")
	mustRun(t, run, "user", "remove", "2")

	out := mustRun(t, run, "comment", "list", "note:1")
	if !strings.Contains(out, "Leaver (removed)") {
		t.Errorf("comment list output = %q", out)
	}

	out = mustRun(t, run, "user", "list")
	if strings.Contains(out, "leaver@example.com") {
		t.Errorf("user list output = %q, want removed user hidden", out)
	}
}
