package core

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tinysh/tinysh/core/logger"
	"golang.org/x/sys/unix"
)

// DefaultJobCapacity bounds the number of concurrent background jobs.
const DefaultJobCapacity = 50

// ErrTableFull is returned by Insert when every slot is occupied.
var ErrTableFull = errors.New("too many background jobs")

// Job is one tracked background process. Active stays true from launch
// until the reaper observes termination; a slot is never reused for a
// different process before it is cleared.
type Job struct {
	PID    int
	Active bool
}

// JobTable is a fixed-capacity registry of background processes. Slots
// are filled first-empty-first and addressed by position, not pid. The
// launcher inserts, the reaper removes; both run under one mutex so the
// router never sees a half-updated slot.
type JobTable struct {
	mu    sync.Mutex
	slots []*Job
	out   io.Writer
	log   *logger.Log
}

// NewJobTable returns a table with the given capacity; zero or negative
// means DefaultJobCapacity. Completion lines are written to out.
func NewJobTable(capacity int, out io.Writer, log *logger.Log) *JobTable {
	if capacity <= 0 {
		capacity = DefaultJobCapacity
	}
	return &JobTable{
		slots: make([]*Job, capacity),
		out:   out,
		log:   log,
	}
}

// Insert registers pid in the first empty slot.
func (t *JobTable) Insert(pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, slot := range t.slots {
		if slot == nil {
			t.slots[i] = &Job{PID: pid, Active: true}
			return nil
		}
	}
	return ErrTableFull
}

// Full reports whether no slot is free. The launcher checks this before
// spawning so a rejected background command never forks; between the
// check and Insert slots can only be freed, never taken, because the
// single shell loop is the only inserter.
func (t *JobTable) Full() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, slot := range t.slots {
		if slot == nil {
			return false
		}
	}
	return true
}

// ActivePIDs returns the pids of all live jobs in slot order.
func (t *JobTable) ActivePIDs() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var pids []int
	for _, slot := range t.slots {
		if slot != nil && slot.Active {
			pids = append(pids, slot.PID)
		}
	}
	return pids
}

// Reap collects every finished background job without blocking. Each
// occupied slot gets a WNOHANG wait; finished jobs are announced on out
// and their slot cleared, everything still running is left alone. Only
// pids this table registered are ever waited on, so a concurrent
// blocking wait for the foreground child is never disturbed.
func (t *JobTable) Reap() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, job := range t.slots {
		if job == nil {
			continue
		}

		var ws unix.WaitStatus
		pid, err := unix.Wait4(job.PID, &ws, unix.WNOHANG, nil)
		switch {
		case err == unix.ECHILD:
			// Already collected elsewhere; drop the stale slot.
			t.slots[i] = nil
			continue
		case err != nil || pid <= 0:
			continue
		}

		job.Active = false
		status := waitStatus(ws)
		fmt.Fprintf(t.out, "background pid %d is done: %s\n", pid, status)
		t.log.JobDone(pid, status.String())
		t.slots[i] = nil
	}
}

// KillAll forcibly terminates every tracked job and empties the table.
// Used by the exit builtin and on shell shutdown.
func (t *JobTable) KillAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, job := range t.slots {
		if job == nil {
			continue
		}
		_ = unix.Kill(job.PID, unix.SIGKILL)
		var ws unix.WaitStatus
		_, _ = unix.Wait4(job.PID, &ws, 0, nil)
		t.slots[i] = nil
	}
}

// waitStatus decodes a raw wait status into a Status, classifying by
// what the kernel reported rather than by exit-code magnitude.
func waitStatus(ws unix.WaitStatus) Status {
	if ws.Signaled() {
		return Status{Signal: unix.Signal(ws.Signal()), Signaled: true}
	}
	return Status{Code: ws.ExitStatus()}
}
