package shellsession

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// openPair allocates a PTY pair with no child attached.
func openPair(t *testing.T) (master, slave *os.File) {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	t.Cleanup(func() {
		_ = master.Close()
		_ = slave.Close()
	})
	return master, slave
}

func waitForSize(t *testing.T, f *os.File, rows, cols uint16) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ws, err := pty.GetsizeFull(f)
		if err == nil && ws.Rows == rows && ws.Cols == cols {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	ws, _ := pty.GetsizeFull(f)
	t.Fatalf("geometry = %dx%d, want %dx%d", ws.Rows, ws.Cols, rows, cols)
}

func TestWatchResize_PropagatesGeometry(t *testing.T) {
	// One pair stands in for the controlling terminal, the other for the
	// wrapped shell's PTY.
	termMaster, termSlave := openPair(t)
	shellMaster, _ := openPair(t)

	if err := pty.Setsize(termMaster, &pty.Winsize{Rows: 24, Cols: 80}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	s := &Session{tty: termSlave, ptmx: shellMaster}
	stop := s.WatchResize(context.Background())
	defer stop()

	// The synthetic startup kick establishes the initial size.
	waitForSize(t, shellMaster, 24, 80)

	// A resize arrives mid-session: geometry follows.
	if err := pty.Setsize(termMaster, &pty.Winsize{Rows: 50, Cols: 132}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}
	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("kill: %v", err)
	}
	waitForSize(t, shellMaster, 50, 132)
}

func TestRestore_SecondCallReturnsFirstOutcome(t *testing.T) {
	_, slave := openPair(t)

	oldState, err := term.MakeRaw(int(slave.Fd()))
	if err != nil {
		t.Fatalf("MakeRaw: %v", err)
	}

	s := &Session{tty: slave, oldState: oldState}
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// Close the terminal before the second call: if Restore touched the fd
	// again it would fail, so a nil return proves the first outcome is
	// cached.
	_ = slave.Close()
	if err := s.Restore(); err != nil {
		t.Errorf("second Restore = %v, want cached nil", err)
	}
}

func TestRestore_FailureIsSticky(t *testing.T) {
	_, slave := openPair(t)

	oldState, err := term.MakeRaw(int(slave.Fd()))
	if err != nil {
		t.Fatalf("MakeRaw: %v", err)
	}
	_ = slave.Close()

	s := &Session{tty: slave, oldState: oldState}
	first := s.Restore()
	if first == nil {
		t.Fatal("Restore on a closed terminal succeeded")
	}
	if second := s.Restore(); second != first {
		t.Errorf("second Restore = %v, want first error %v", second, first)
	}
}
