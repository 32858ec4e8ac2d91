package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseJob(t *testing.T) {
	var job BaseJob
	require.NoError(t, job.Schedule("UTC", "@every 1s"))

	runs := 0
	job.OnWork = func() error {
		runs++
		// a tick that fires while running is dropped
		job.Run()
		assert.True(t, job.IsRunning())
		return errors.New("EOF")
	}

	job.Run()
	job.Run()
	assert.Equal(t, 2, runs)
	assert.False(t, job.IsRunning())

	assert.Error(t, job.Schedule("Nowhere/City", "@every 1s"))
	assert.Error(t, job.Schedule("UTC", "not a spec"))
}
