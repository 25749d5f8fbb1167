package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"github.com/tinysh/tinysh/core/logger"
)

// Launcher turns a Command into a running process. Foreground commands
// are waited on and their raw status captured in State; background
// commands are registered in the JobTable and left to the reaper.
type Launcher struct {
	State *State
	Jobs  *JobTable
	Log   *logger.Log

	// Streams the child inherits when no redirection applies. Status
	// and error lines are written to Out.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func NewLauncher(state *State, jobs *JobTable, log *logger.Log) *Launcher {
	return &Launcher{
		State: state,
		Jobs:  jobs,
		Log:   log,
		In:    os.Stdin,
		Out:   os.Stdout,
		Err:   os.Stderr,
	}
}

// Launch executes cmd and returns its exit status. For background
// commands the return value is unused; the result is reported by the
// reaper when the job finishes.
//
// Redirection files are opened before the child is spawned, so an open
// failure costs exit value 1 without ever forking. The opened files are
// handed straight to the child and closed in the parent afterwards,
// which leaves the shell's own streams untouched.
func (l *Launcher) Launch(cmd *Command) int {
	if cmd.Background && l.Jobs.Full() {
		fmt.Fprintln(l.Out, ErrTableFull.Error())
		return l.fail()
	}

	child := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	child.Stderr = l.Err

	stdin, err := l.openStdin(cmd)
	if err != nil {
		fmt.Fprintln(l.Out, err.Error())
		return l.fail()
	}
	if stdin != nil {
		defer stdin.Close()
		child.Stdin = stdin
	} else {
		child.Stdin = l.In
	}

	stdout, err := l.openStdout(cmd)
	if err != nil {
		fmt.Fprintln(l.Out, err.Error())
		return l.fail()
	}
	if stdout != nil {
		defer stdout.Close()
		child.Stdout = stdout
	} else {
		child.Stdout = l.Out
	}

	if err := child.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(l.Out, "%s: no such file or directory\n", cmd.Args[0])
			return l.fail()
		}
		// Spawn failure (permissions, resource exhaustion), not a bad
		// program name. The shell survives it; only this command fails.
		fmt.Fprintf(l.Err, "tinysh: %s: %v\n", cmd.Args[0], err)
		return l.fail()
	}

	pid := child.Process.Pid
	l.Log.Launch(cmd.Args, pid, cmd.Background)

	if cmd.Background {
		// Cannot fail: the capacity check above reserved headroom and
		// the reaper only ever frees slots. A child that exits before
		// this insert lands leaves a stale slot that the reaper's
		// ECHILD branch clears on its next pass.
		_ = l.Jobs.Insert(pid)
		fmt.Fprintf(l.Out, "background pid is %d\n", pid)
		return 0
	}

	l.State.SetForeground(pid)
	waitErr := child.Wait()
	l.State.ClearForeground()

	status := decodeWait(child.ProcessState, waitErr)
	l.State.SetLastStatus(status)
	return status.ExitCode()
}

// openStdin returns the file the child should read from, or nil to
// inherit the shell's stdin.
func (l *Launcher) openStdin(cmd *Command) (*os.File, error) {
	switch {
	case cmd.InputFile != "":
		f, err := os.Open(cmd.InputFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input", cmd.InputFile)
		}
		return f, nil
	case cmd.Background:
		f, err := os.Open(os.DevNull)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for input", os.DevNull)
		}
		return f, nil
	}
	return nil, nil
}

// openStdout returns the file the child should write to, or nil to
// inherit the shell's stdout. Output files are truncated, or created
// mode 0777 before umask.
func (l *Launcher) openStdout(cmd *Command) (*os.File, error) {
	switch {
	case cmd.OutputFile != "":
		f, err := os.OpenFile(cmd.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0777)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for output", cmd.OutputFile)
		}
		return f, nil
	case cmd.Background:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("cannot open %s for output", os.DevNull)
		}
		return f, nil
	}
	return nil, nil
}

// fail records exit value 1 as the last foreground status.
func (l *Launcher) fail() int {
	l.State.SetLastStatus(Status{Code: 1})
	return 1
}

// decodeWait extracts the raw wait status from a finished child.
func decodeWait(ps *os.ProcessState, waitErr error) Status {
	if ps != nil {
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return Status{Signal: ws.Signal(), Signaled: true}
			}
			return Status{Code: ws.ExitStatus()}
		}
		return Status{Code: ps.ExitCode()}
	}
	if waitErr != nil {
		return Status{Code: 1}
	}
	return Status{}
}
