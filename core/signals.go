package core

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/tinysh/tinysh/core/logger"
	"golang.org/x/sys/unix"
)

// Router reacts to the three terminal signals the shell cares about:
//
//	SIGINT  - kill the foreground child, background jobs are untouched
//	SIGCHLD - drain finished background jobs from the table
//	SIGTSTP - toggle foreground-only mode
//
// All three arrive on one buffered channel and are handled serially by
// a single goroutine, so no handler ever observes another mid-update.
// Interrupted syscalls in the main loop restart on their own because
// delivery happens on a channel rather than inside the blocked call.
type Router struct {
	state *State
	jobs  *JobTable
	out   io.Writer
	log   *logger.Log

	sigs chan os.Signal
	done chan struct{}
}

func NewRouter(state *State, jobs *JobTable, out io.Writer, log *logger.Log) *Router {
	return &Router{
		state: state,
		jobs:  jobs,
		out:   out,
		log:   log,
	}
}

// Start installs the handlers. Call once at startup.
func (r *Router) Start() {
	r.sigs = make(chan os.Signal, 16)
	r.done = make(chan struct{})
	signal.Notify(r.sigs, unix.SIGINT, unix.SIGCHLD, unix.SIGTSTP)
	go r.route()
}

// Stop uninstalls the handlers and waits for the router goroutine.
func (r *Router) Stop() {
	signal.Stop(r.sigs)
	close(r.sigs)
	<-r.done
}

func (r *Router) route() {
	defer close(r.done)
	for sig := range r.sigs {
		switch sig {
		case unix.SIGINT:
			r.interrupt()
		case unix.SIGCHLD:
			r.jobs.Reap()
		case unix.SIGTSTP:
			r.toggleForegroundOnly()
		}
	}
}

// interrupt forcibly terminates the foreground child, if any. The
// launcher's blocking wait observes the termination and records the
// status for the status builtin.
func (r *Router) interrupt() {
	pid := r.state.ForegroundPID()
	if pid <= 0 {
		return
	}
	_ = unix.Kill(pid, unix.SIGKILL)
	fmt.Fprintf(r.out, "terminated by signal %d\n", int(unix.SIGINT))
	r.log.Interrupt(pid)
}

func (r *Router) toggleForegroundOnly() {
	foregroundOnly := r.state.ToggleForegroundOnly()
	if foregroundOnly {
		fmt.Fprintln(r.out, "Entering foreground-only mode (& is now ignored)")
	} else {
		fmt.Fprintln(r.out, "Exiting foreground-only mode")
	}
	r.log.ModeChange(foregroundOnly)
}
