package core

import (
	"os"
	"os/user"
	"strings"

	"github.com/fatih/color"
	"github.com/tinysh/tinysh/core/config"
)

// DefaultPrompt is used when the configuration leaves the prompt empty.
const DefaultPrompt = ": "

var promptColor = color.New(color.FgGreen, color.Bold)

// ExpandPrompt fills the PS1-style escapes: \u user, \h host, \w working
// directory (home shown as ~), \$ is # for root and $ otherwise.
func ExpandPrompt(format, username, hostname, pwd, home string, root bool) string {
	out := strings.ReplaceAll(format, `\u`, username)
	out = strings.ReplaceAll(out, `\h`, hostname)

	if home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	out = strings.ReplaceAll(out, `\w`, pwd)

	if root {
		out = strings.ReplaceAll(out, `\$`, "#")
	} else {
		out = strings.ReplaceAll(out, `\$`, "$")
	}
	return out
}

func (s *Shell) prompt() string {
	format := s.config.Prompt
	if format == "" {
		format = DefaultPrompt
	}

	var username, home string
	if u, err := user.Current(); err == nil {
		username = u.Username
		home = u.HomeDir
	}
	hostname, _ := os.Hostname()
	pwd, _ := os.Getwd()

	out := ExpandPrompt(format, username, hostname, pwd, home, os.Getuid() == 0)
	return promptColor.Sprint(out)
}

// applyColorMode maps the config color mode onto the color package's
// global switch; auto keeps its own tty detection.
func applyColorMode(mode string) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
}
