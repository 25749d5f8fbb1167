package config

import (
	"log"
	"os"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir, creating the
// session log directory alongside it. Existing files are kept.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), dir)

	if err := InitializeFs(fs, logger); err != nil {
		return nil, err
	}

	cfg, err := LoadFs(fs)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// InitializeFs writes the default configuration into the root of fs.
func InitializeFs(fs afero.Fs, logger *log.Logger) error {
	exists, err := afero.Exists(fs, ConfigurationName)
	switch {
	case err != nil:
		return err
	case exists:
		logger.Printf("%s already exists, keeping it", ConfigurationName)
	default:
		logger.Printf("writing %s", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return err
		}
	}

	logger.Printf("creating %s", LogsDirName)
	if err := fs.MkdirAll(LogsDirName, 0700); err != nil {
		return err
	}

	logger.Printf("creating %s", AppLogName)
	fd, err := fs.OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	return fd.Close()
}
