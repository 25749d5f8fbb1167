package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/tinysh/tinysh/core/config"
	"github.com/tinysh/tinysh/core/logger"
)

// Shell wires the parser, launcher, job table and signal router together
// and drives them from a readline loop.
type Shell struct {
	config   *config.Configuration
	state    *State
	jobs     *JobTable
	launcher *Launcher
	router   *Router
	log      *logger.Log

	readline *readline.Instance

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Set to true to quit the shell
	Quit bool
}

func NewShell(cfg *config.Configuration, sessionLog *logger.Log) *Shell {
	s := &Shell{
		config: cfg,
		state:  NewState(),
		log:    sessionLog,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	s.jobs = NewJobTable(cfg.JobCapacity, s.Out, sessionLog)
	s.launcher = NewLauncher(s.state, s.jobs, sessionLog)
	s.router = NewRouter(s.state, s.jobs, s.Out, sessionLog)
	applyColorMode(cfg.Color)
	return s
}

// SetStreams points the shell and everything it wires together at the
// given streams instead of the process's own.
func (s *Shell) SetStreams(in io.Reader, out, errOut io.Writer) {
	s.In, s.Out, s.Err = in, out, errOut
	s.jobs.out = out
	s.launcher.In, s.launcher.Out, s.launcher.Err = in, out, errOut
	s.router.out = out
}

// Run reads and dispatches commands until exit or EOF. Whatever ends the
// session, every still-running background job is killed on the way out.
func (s *Shell) Run() int {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(s.In),
		Stdout: s.Out,
		Stderr: s.Err,
	}
	if err := cfg.Init(); err != nil {
		fmt.Fprintf(s.Err, "tinysh: %v\n", err)
		return 1
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(s.Err, "tinysh: %v\n", err)
		return 1
	}
	s.readline = rl
	defer rl.Close()

	s.router.Start()
	defer s.router.Stop()
	defer s.jobs.KillAll()

	for !s.Quit {
		s.readline.SetPrompt(s.prompt())
		line, err := s.readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears the line; the router already dealt with
			// any foreground child.
			continue

		case err != nil:
			log.Printf("readline: %v", err)
			continue

		case strings.TrimSpace(line) == "":
			continue
		}

		s.Dispatch(line)
	}
	return 0
}

// Dispatch parses one line and runs it: builtins directly, everything
// else through the launcher.
func (s *Shell) Dispatch(line string) {
	cmd, err := ParseLine(line, os.Getpid(), s.state.ForegroundOnly())
	if err != nil {
		fmt.Fprintf(s.Out, "tinysh: %v\n", err)
		return
	}
	if cmd.Empty() {
		return
	}

	s.log.Command(cmd.Args)

	if builtin, ok := AllBuiltins[cmd.Args[0]]; ok {
		builtin.Main(s, cmd.Args)
		return
	}

	s.launcher.Launch(cmd)
}
