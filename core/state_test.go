package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestStateForegroundPID(t *testing.T) {
	s := NewState()
	assert.Equal(t, -1, s.ForegroundPID())

	s.SetForeground(4321)
	assert.Equal(t, 4321, s.ForegroundPID())

	s.ClearForeground()
	assert.Equal(t, -1, s.ForegroundPID())
}

func TestStateToggleForegroundOnly(t *testing.T) {
	s := NewState()
	assert.False(t, s.ForegroundOnly())

	assert.True(t, s.ToggleForegroundOnly())
	assert.True(t, s.ForegroundOnly())

	assert.False(t, s.ToggleForegroundOnly())
	assert.False(t, s.ForegroundOnly())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "exit value 0", Status{}.String())
	assert.Equal(t, "exit value 5", Status{Code: 5}.String())
	assert.Equal(t, "terminated by signal 15",
		Status{Signal: unix.SIGTERM, Signaled: true}.String())
}

func TestStatusExitCode(t *testing.T) {
	assert.Equal(t, 2, Status{Code: 2}.ExitCode())
	assert.Equal(t, 128+9, Status{Signal: unix.SIGKILL, Signaled: true}.ExitCode())
}
