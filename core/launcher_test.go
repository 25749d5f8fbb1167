package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestLauncher(capacity int) (*Launcher, *bytes.Buffer) {
	out := &bytes.Buffer{}
	state := NewState()
	jobs := NewJobTable(capacity, out, nil)
	l := NewLauncher(state, jobs, nil)
	l.In = strings.NewReader("")
	l.Out = out
	l.Err = out
	return l, out
}

func TestLaunchForegroundCapturesExitValue(t *testing.T) {
	l, _ := newTestLauncher(5)

	got := l.Launch(&Command{Args: []string{"sh", "-c", "exit 3"}})

	assert.Equal(t, 3, got)
	assert.Equal(t, Status{Code: 3}, l.State.LastStatus())
	assert.Equal(t, "exit value 3", l.State.LastStatus().String())
}

func TestLaunchForegroundInheritsStreams(t *testing.T) {
	l, out := newTestLauncher(5)

	got := l.Launch(&Command{Args: []string{"echo", "hello"}})

	assert.Equal(t, 0, got)
	assert.Equal(t, "hello\n", out.String())
}

func TestLaunchForegroundClearsForegroundPID(t *testing.T) {
	l, _ := newTestLauncher(5)

	l.Launch(&Command{Args: []string{"true"}})

	assert.Equal(t, -1, l.State.ForegroundPID())
}

func TestLaunchMissingProgram(t *testing.T) {
	l, out := newTestLauncher(5)

	got := l.Launch(&Command{Args: []string{"no-such-program-xyzzy"}})

	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), "no-such-program-xyzzy: no such file or directory")
	assert.Equal(t, "exit value 1", l.State.LastStatus().String())
}

func TestLaunchMissingProgramAbsolutePath(t *testing.T) {
	l, out := newTestLauncher(5)
	target := filepath.Join(t.TempDir(), "gone")

	got := l.Launch(&Command{Args: []string{target}})

	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), fmt.Sprintf("%s: no such file or directory", target))
}

func TestLaunchSpawnFailureReportedTruthfully(t *testing.T) {
	l, out := newTestLauncher(5)
	target := filepath.Join(t.TempDir(), "not-executable")
	require.NoError(t, os.WriteFile(target, []byte("#!/bin/sh\n"), 0644))

	got := l.Launch(&Command{Args: []string{target}})

	// Not a lookup failure, so the diagnostic carries the real error.
	assert.Equal(t, 1, got)
	assert.NotContains(t, out.String(), "no such file or directory")
	assert.Contains(t, out.String(), "permission denied")
	assert.Equal(t, "exit value 1", l.State.LastStatus().String())
}

func TestLaunchOutputRedirect(t *testing.T) {
	l, out := newTestLauncher(5)
	target := filepath.Join(t.TempDir(), "out.txt")

	got := l.Launch(&Command{Args: []string{"echo", "redirected"}, OutputFile: target})

	assert.Equal(t, 0, got)
	// The shell's own stream saw nothing.
	assert.Empty(t, out.String())

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "redirected\n", string(contents))
}

func TestLaunchOutputRedirectTruncates(t *testing.T) {
	l, _ := newTestLauncher(5)
	target := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("previous contents that are longer"), 0644))

	l.Launch(&Command{Args: []string{"echo", "short"}, OutputFile: target})

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(contents))
}

func TestLaunchInputRedirect(t *testing.T) {
	l, out := newTestLauncher(5)
	source := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(source, []byte("from the file"), 0644))

	got := l.Launch(&Command{Args: []string{"cat"}, InputFile: source})

	assert.Equal(t, 0, got)
	assert.Equal(t, "from the file", out.String())
}

func TestLaunchCannotOpenOutput(t *testing.T) {
	l, out := newTestLauncher(5)
	target := filepath.Join(t.TempDir(), "missing-dir", "out.txt")

	got := l.Launch(&Command{Args: []string{"echo", "nope"}, OutputFile: target})

	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), fmt.Sprintf("cannot open %s for output", target))
	// No process ran and status reflects the failure.
	assert.Equal(t, "exit value 1", l.State.LastStatus().String())
	assert.NotContains(t, out.String(), "nope")
}

func TestLaunchCannotOpenInput(t *testing.T) {
	l, out := newTestLauncher(5)
	source := filepath.Join(t.TempDir(), "does-not-exist")

	got := l.Launch(&Command{Args: []string{"cat"}, InputFile: source})

	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), fmt.Sprintf("cannot open %s for input", source))
	assert.Equal(t, "exit value 1", l.State.LastStatus().String())
}

func TestLaunchForegroundSignalTermination(t *testing.T) {
	l, _ := newTestLauncher(5)

	// The child terminates itself so the wait observes a signal death.
	got := l.Launch(&Command{Args: []string{"sh", "-c", "kill -TERM $$"}})

	assert.Equal(t, 128+int(unix.SIGTERM), got)
	status := l.State.LastStatus()
	assert.True(t, status.Signaled)
	assert.Equal(t, fmt.Sprintf("terminated by signal %d", int(unix.SIGTERM)), status.String())
}

func TestLaunchBackgroundReturnsImmediately(t *testing.T) {
	l, out := newTestLauncher(5)

	start := time.Now()
	got := l.Launch(&Command{Args: []string{"sleep", "2"}, Background: true})
	elapsed := time.Since(start)

	assert.Equal(t, 0, got)
	assert.Less(t, elapsed, time.Second)

	pids := l.Jobs.ActivePIDs()
	require.Len(t, pids, 1)
	assert.Contains(t, out.String(), fmt.Sprintf("background pid is %d", pids[0]))

	l.Jobs.KillAll()
}

func TestLaunchBackgroundIsReaped(t *testing.T) {
	l, out := newTestLauncher(5)

	got := l.Launch(&Command{Args: []string{"true"}, Background: true})
	require.Equal(t, 0, got)

	pids := l.Jobs.ActivePIDs()
	require.Len(t, pids, 1)

	reapUntilEmpty(t, l.Jobs)
	assert.Contains(t, out.String(), fmt.Sprintf("background pid %d is done: exit value 0", pids[0]))
}

func TestLaunchBackgroundRejectedWhenTableFull(t *testing.T) {
	l, out := newTestLauncher(1)
	require.NoError(t, l.Jobs.Insert(424242))

	got := l.Launch(&Command{Args: []string{"sleep", "2"}, Background: true})

	assert.Equal(t, 1, got)
	assert.Contains(t, out.String(), "too many background jobs")
	assert.NotContains(t, out.String(), "background pid is")
	assert.Equal(t, "exit value 1", l.State.LastStatus().String())
	// The occupied slot was not disturbed.
	assert.Equal(t, []int{424242}, l.Jobs.ActivePIDs())
}
