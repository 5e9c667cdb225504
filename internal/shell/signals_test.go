package shell

import (
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosh/internal/config"
)

// waitUntil polls the reap loop until cond holds or the deadline
// passes. Children exit on their own schedule, so tests poll rather
// than rely on signal delivery timing.
func waitUntil(t *testing.T, s *Shell, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.reapChildren(context.Background())
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestReapChildrenClearsForegroundSlot(t *testing.T) {
	s, _, _ := newTestShell(config.Default())

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	s.fgPid.Store(int64(cmd.Process.Pid))

	waitUntil(t, s, func() bool {
		return s.fgPid.Load() == noForeground
	})
}

func TestReapChildrenMarksBackgroundJob(t *testing.T) {
	s, _, _ := newTestShell(config.Default())

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	job := newJob(cmd.Process.Pid, "true")
	s.jobs.Add(job)

	waitUntil(t, s, func() bool {
		return !job.Running()
	})

	finished := s.jobs.TakeFinished()
	require.Len(t, finished, 1)
	assert.Equal(t, cmd.Process.Pid, finished[0].Pid)
	assert.Equal(t, 0, s.jobs.Len())
}

func TestReapChildrenDropsUntrackedPid(t *testing.T) {
	s, _, _ := newTestShell(config.Default())

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	// Neither the foreground slot nor the job table knows this child;
	// the reap loop must swallow it without side effects.
	waitUntil(t, s, func() bool {
		// Once reaped, waiting again reports no such child.
		err := cmd.Process.Signal(syscall.Signal(0))
		return err != nil
	})

	assert.Equal(t, int64(noForeground), s.fgPid.Load())
	assert.Equal(t, 0, s.jobs.Len())
}

func TestForwardInterruptWithForeground(t *testing.T) {
	s, stdout, _ := newTestShell(config.Default())

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	s.fgPid.Store(int64(cmd.Process.Pid))
	defer s.fgPid.Store(noForeground)

	s.forwardInterrupt(context.Background())

	err := cmd.Wait()
	require.Error(t, err, "sleep must die from the forwarded interrupt")

	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok)
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.Equal(t, syscall.SIGINT, ws.Signal())

	assert.Equal(t, "\n", stdout.String(), "forwarding prints no prompt")
}

func TestForwardInterruptWithoutForeground(t *testing.T) {
	s, stdout, _ := newTestShell(config.Default())

	s.forwardInterrupt(context.Background())

	assert.Equal(t, "\n$ ", stdout.String(), "idle interrupt just reprompts")
}

func TestForwardInterruptReportsPendingJobs(t *testing.T) {
	s, stdout, _ := newTestShell(config.Default())

	j := newJob(515151, "demo")
	s.jobs.Add(j)
	j.running.Store(false)

	s.forwardInterrupt(context.Background())

	assert.Equal(t, "\n[515151] Finished\n$ ", stdout.String())
}
