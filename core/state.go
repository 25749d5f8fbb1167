package core

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Status is the captured outcome of the most recent foreground command.
type Status struct {
	// Code is the exit value, meaningful when Signaled is false.
	Code int
	// Signal terminated the process when Signaled is true.
	Signal   unix.Signal
	Signaled bool
}

func (s Status) String() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", int(s.Signal))
	}
	return fmt.Sprintf("exit value %d", s.Code)
}

// ExitCode folds the status into a single integer using the usual shell
// convention of 128+N for signals.
func (s Status) ExitCode() int {
	if s.Signaled {
		return 128 + int(s.Signal)
	}
	return s.Code
}

// State holds the process-wide shell state shared between the main loop
// and the signal router: the pid of the running foreground child, the
// status of the last completed foreground command, and the
// foreground-only flag toggled by SIGTSTP.
//
// All access goes through the mutex so the router never observes a
// half-updated value.
type State struct {
	mu             sync.Mutex
	foregroundPID  int
	lastStatus     Status
	foregroundOnly bool
}

func NewState() *State {
	return &State{foregroundPID: -1}
}

// SetForeground records pid as the currently running foreground child.
func (s *State) SetForeground(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foregroundPID = pid
}

// ClearForeground marks that no foreground child is running.
func (s *State) ClearForeground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foregroundPID = -1
}

// ForegroundPID returns the running foreground child's pid, or -1.
func (s *State) ForegroundPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.foregroundPID
}

func (s *State) SetLastStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatus = st
}

func (s *State) LastStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

// ToggleForegroundOnly flips the foreground-only flag and returns the
// new value.
func (s *State) ToggleForegroundOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foregroundOnly = !s.foregroundOnly
	return s.foregroundOnly
}

func (s *State) ForegroundOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.foregroundOnly
}
