package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/zdunecki/qrwizard/pkg/config"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	t.Setenv(config.EnvStateDir, t.TempDir())
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestTransformToBackendFromStdin(t *testing.T) {
	out := run(t, `{"moduleShape":"dots"}`, "transform", "to-backend")

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["foregroundColor"] != "#000000" {
		t.Fatalf("foregroundColor = %v", got["foregroundColor"])
	}
}

func TestTypesListsBuiltins(t *testing.T) {
	out := run(t, "", "types")
	for _, want := range []string{"- url:", "- wifi:", "encryption"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStateShowWithoutProgress(t *testing.T) {
	out := run(t, "", "state", "show")
	if !strings.Contains(out, "No saved progress.") {
		t.Fatalf("output = %q", out)
	}
}
