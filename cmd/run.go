package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/tinysh/tinysh/core"
	"github.com/tinysh/tinysh/core/config"
	"github.com/tinysh/tinysh/core/logger"
)

// runCmd starts the interactive shell
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := config.Load(cfgPath)
		if errors.Is(err, fs.ErrNotExist) {
			// Usable out of the box; init is only needed to customize.
			configuration = config.Default(cfgPath)
		} else if err != nil {
			return err
		}
		if err := configuration.Validate(); err != nil {
			return err
		}

		// Operator diagnostics go to the app log so they never mix with
		// shell output on the terminal.
		if appLog, err := configuration.OpenAppLog(); err == nil {
			defer appLog.Close()
			log.SetOutput(appLog)
		}

		var sessionLog *logger.Log
		if configuration.RecordSessions {
			name := fmt.Sprintf("%s.log", time.Now().Format(time.RFC3339))
			fd, err := configuration.CreateSessionLog(name)
			if err != nil {
				log.Printf("session log disabled: %v", err)
			} else {
				defer fd.Close()
				sessionLog = logger.New(fd)
			}
		}

		shell := core.NewShell(configuration, sessionLog)
		if code := shell.Run(); code != 0 {
			return fmt.Errorf("shell exited with status %d", code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
