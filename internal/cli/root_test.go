package cli

import (
	"bytes"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	dbFlag := root.PersistentFlags().Lookup("db")
	if dbFlag == nil {
		t.Fatal("expected --db flag to exist")
	}
}

func TestSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{
		"login", "logout", "status", "whoami", "visits", "lobby", "bulk",
		"notifications", "dashboard", "report", "export", "register", "serve", "version",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"approve needs id", []string{"visits", "approve"}},
		{"approve rejects non-numeric id", []string{"visits", "approve", "abc"}},
		{"checkin rejects zero id", []string{"lobby", "checkin", "0"}},
		{"bulk needs action", []string{"bulk"}},
		{"bulk rejects unknown action", []string{"bulk", "approve", "3"}},
		{"bulk needs a selection", []string{"bulk", "checkin"}},
		{"export rejects unknown format", []string{"export", "docx"}},
		{"register rejects bad token", []string{"register", "not-a-token"}},
		{"update needs a field", []string{"visits", "update", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			if _, err := executeCommand(tt.args...); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}
