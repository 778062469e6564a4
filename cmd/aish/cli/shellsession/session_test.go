package shellsession

import (
	"errors"
	"os/exec"
	"testing"
)

func TestResolveShell_Override(t *testing.T) {
	path, err := ResolveShell("sh")
	if err != nil {
		t.Fatalf("ResolveShell(sh): %v", err)
	}
	if path == "" {
		t.Error("empty path for sh")
	}
}

func TestResolveShell_MissingOverride(t *testing.T) {
	_, err := ResolveShell("definitely-not-a-shell-9000")
	if !errors.Is(err, ErrNoShell) {
		t.Errorf("err = %v, want ErrNoShell", err)
	}
}

func TestResolveShell_EnvFallback(t *testing.T) {
	t.Setenv("SHELL", "sh")
	path, err := ResolveShell("")
	if err != nil {
		t.Fatalf("ResolveShell: %v", err)
	}
	if path == "" {
		t.Error("empty path from $SHELL")
	}
}

func TestResolveShell_BadEnvFallsThrough(t *testing.T) {
	t.Setenv("SHELL", "/nonexistent/shell")
	path, err := ResolveShell("")
	if err != nil {
		t.Skipf("no fallback shell on PATH: %v", err)
	}
	if path == "/nonexistent/shell" {
		t.Error("kept unusable $SHELL value")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	if got := exitCode(nil); got != 0 {
		t.Errorf("exitCode(nil) = %d, want 0", got)
	}
	if got := exitCode(errors.New("plain error")); got != 1 {
		t.Errorf("exitCode(plain) = %d, want 1", got)
	}

	// Produce a real ExitError with status 3.
	err := exec.Command("sh", "-c", "exit 3").Run()
	if err == nil {
		t.Fatal("expected non-nil error from exit 3")
	}
	if got := exitCode(err); got != 3 {
		t.Errorf("exitCode(exit 3) = %d, want 3", got)
	}
}
