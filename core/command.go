package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// pidToken is replaced by the shell's own pid wherever it appears in a
// word.
const pidToken = "$$"

// Command describes one parsed command line: the argument vector,
// optional redirection targets and whether the process should run in the
// background. A Command is built fresh for every line and never reused.
type Command struct {
	Args       []string
	InputFile  string
	OutputFile string
	Background bool
}

// Empty reports whether the line held no command, e.g. a blank line or a
// comment. The shell loop re-prompts instead of dispatching.
func (c *Command) Empty() bool {
	return len(c.Args) == 0
}

// ParseLine turns one raw line into a Command.
//
// Words are split on whitespace with shell-style quoting. "<" and ">"
// mark the following word as the input and output file. "&" requests a
// background launch unless foreground-only mode is on, in which case it
// is dropped. A word starting with "#" ends the line; everything after
// it is comment. The first "$$" in any argument word is replaced with
// pid.
func ParseLine(line string, pid int, foregroundOnly bool) (*Command, error) {
	words, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	cmd := &Command{}
	var wantInput, wantOutput bool
	for _, word := range words {
		switch {
		case wantInput:
			cmd.InputFile = word
			wantInput = false
		case wantOutput:
			cmd.OutputFile = word
			wantOutput = false
		case strings.HasPrefix(word, "#"):
			return cmd, nil
		case word == "<":
			wantInput = true
		case word == ">":
			wantOutput = true
		case word == "&":
			if !foregroundOnly {
				cmd.Background = true
			}
		default:
			cmd.Args = append(cmd.Args, expandPID(word, pid))
		}
	}
	return cmd, nil
}

// expandPID substitutes the first pid token in word, keeping any text
// around it.
func expandPID(word string, pid int) string {
	return strings.Replace(word, pidToken, strconv.Itoa(pid), 1)
}
