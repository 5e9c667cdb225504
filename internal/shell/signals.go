package shell

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"gosh/internal/ctxlog"
)

// handleSignals consumes child-termination and interrupt signals until
// the channel is closed. It runs on its own goroutine and never blocks
// on anything an actor holds across a blocking call: the job-table
// lock is taken only briefly and the foreground slot is a plain
// atomic.
func (s *Shell) handleSignals(ctx context.Context) {
	for sig := range s.sigChan {
		switch sig {
		case unix.SIGCHLD:
			s.reapChildren(ctx)
		case unix.SIGINT:
			s.forwardInterrupt(ctx)
		}
	}
}

// reapChildren collects every currently-terminated child without
// blocking. A reaped foreground pid clears the slot and nothing is
// printed; the blocked executor observes the termination itself.
// Background pids flip their job's liveness for the prompt to report.
func (s *Shell) reapChildren(ctx context.Context) {
	for {
		pid, err := unix.Wait4(-1, nil, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}

		if int64(pid) == s.fgPid.Load() {
			s.fgPid.Store(noForeground)
			continue
		}

		if !s.jobs.MarkFinished(pid) {
			// Not ours to track; drop it.
			ctxlog.Debug(ctx, "reaped untracked child", "pid", pid)
		}
	}
}

// forwardInterrupt passes a keyboard interrupt to the foreground
// child, if any; the shell itself keeps running. With nothing in the
// foreground the prompt is simply redisplayed.
func (s *Shell) forwardInterrupt(ctx context.Context) {
	fmt.Fprintln(s.stdout)

	pid := s.fgPid.Load()
	if pid != noForeground {
		if err := unix.Kill(int(pid), unix.SIGINT); err != nil {
			ctxlog.Debug(ctx, "interrupt forward failed", "pid", pid, "err", err)
		}
		return
	}

	s.showPrompt()
}
