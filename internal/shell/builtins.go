package shell

import (
	"context"

	"gosh/internal/ctxlog"
	"gosh/internal/parser"
)

const exitCommand = "exit"

// executeBuiltin dispatches built-in commands and reports whether the
// command was handled. exit is the only built-in; it ignores any
// further tokens on the line.
func (s *Shell) executeBuiltin(ctx context.Context, cmd *parser.Command) (bool, error) {
	switch cmd.Args[0] {
	case exitCommand:
		return true, s.exit(ctx)
	default:
		return false, nil
	}
}

// exit forcibly terminates every still-running background job, clears
// the table and asks both actors to wind down. The process itself
// exits only after both actors reach their loop boundary.
func (s *Shell) exit(ctx context.Context) error {
	n := s.jobs.Len()
	err := s.jobs.KillRunning()
	ctxlog.Debug(ctx, "exit requested", "jobs_killed", n)

	s.shutdown.Store(true)

	return err
}
