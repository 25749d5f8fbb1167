package core

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// ListBuiltins returns the registered builtin names, sorted.
func ListBuiltins() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SimpleCommand handles flag parsing and help output for a builtin.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (c *SimpleCommand) Flags() *getopt.Set {
	if c.flags == nil {
		c.flags = getopt.New()
	}

	return c.flags
}

// PrintHelp writes help for the command to the given writer.
func (c *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, c.Use)
	fmt.Fprintln(w, c.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	c.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
func (c *SimpleCommand) Run(s *Shell, args []string, callback func() int) int {
	opts := c.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		fmt.Fprintf(s.Err, "error: %s\n\n", err)
		c.PrintHelp(s.Out)
		return 1
	}

	if *showHelp {
		c.PrintHelp(s.Out)
		return 0
	}

	return callback()
}

// Cd is the cd shell builtin; without an argument it changes to $HOME.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		args = append(args, os.Getenv("HOME"))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.Err, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.Err, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// PrintStatus reports how the most recent foreground command ended:
// either its exit value or the signal that terminated it.
func PrintStatus(s *Shell, args []string) int {
	fmt.Fprintln(s.Out, s.state.LastStatus().String())
	return 0
}

// Exit kills every tracked background job and quits the shell.
func Exit(s *Shell, args []string) int {
	s.jobs.KillAll()
	s.Quit = true
	return 0
}

// Jobs lists the background jobs the shell is still tracking.
func Jobs(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:   "jobs",
		Short: "List background jobs the shell is tracking.",
	}
	return cmd.Run(s, args, func() int {
		for _, pid := range s.jobs.ActivePIDs() {
			fmt.Fprintf(s.Out, "background pid %d is running\n", pid)
		}
		return 0
	})
}

func Help(s *Shell, args []string) int {
	w := s.Out
	fmt.Fprintln(w, "tinysh, a small job-controlling command interpreter")
	fmt.Fprintln(w, "These commands are defined internally. Type `help` to see this list.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Join(ListBuiltins(), "\n"))
	return 0
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["status"] = ShellBuiltinFunc(PrintStatus)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["jobs"] = ShellBuiltinFunc(Jobs)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
