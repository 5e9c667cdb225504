package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"gosh/internal/ctxlog"
	"gosh/internal/parser"
)

// execute parses one line and runs the result. An empty line is a
// no-op. Recoverable failures are reported on stderr and the
// interpreter carries on.
func (s *Shell) execute(ctx context.Context, line string) {
	cmd := parser.Parse(line)
	if cmd.Empty() {
		return
	}

	ctxlog.Debug(ctx, "command parsed",
		"argv", cmd.String(),
		"in", cmd.In,
		"out", cmd.Out,
		"background", cmd.Background,
	)

	if ok, err := s.executeBuiltin(ctx, cmd); ok {
		if err != nil {
			fmt.Fprintf(s.stderr, "Error: %v\n", err)
		}
		return
	}

	if err := s.spawn(ctx, cmd); err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
	}
}

// spawn launches the external program described by cmd, applying
// redirection first. A redirection or start failure aborts only this
// command attempt.
func (s *Shell) spawn(ctx context.Context, cmd *parser.Command) error {
	proc := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	proc.Stdin = os.Stdin
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr

	if cmd.Background {
		// Detached children live in their own process group, so a
		// terminal interrupt aimed at the foreground command never
		// reaches them. That also means a terminal read from a
		// detached child would stop it with SIGTTIN, so unless
		// redirected its stdin is /dev/null rather than the terminal.
		proc.Stdin = nil
		proc.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	if cmd.Out != "" {
		f, err := os.OpenFile(cmd.Out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			return fmt.Errorf("couldn't open file '%s': %w", cmd.Out, err)
		}
		defer f.Close()
		proc.Stdout = f
	}

	if cmd.In != "" {
		f, err := os.Open(cmd.In)
		if err != nil {
			return fmt.Errorf("couldn't open file '%s': %w", cmd.In, err)
		}
		defer f.Close()
		proc.Stdin = f
	}

	if err := proc.Start(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Args[0], err)
	}

	if cmd.Background {
		s.registerBackground(ctx, proc)
		return nil
	}

	return s.waitForeground(ctx, proc)
}

// waitForeground records the child in the foreground slot and blocks
// until its termination is observed. The wait races with the signal
// goroutine reaping the same pid; losing that race is success, not an
// error.
func (s *Shell) waitForeground(ctx context.Context, proc *exec.Cmd) error {
	pid := proc.Process.Pid
	s.fgPid.Store(int64(pid))
	defer s.fgPid.Store(noForeground)

	err := proc.Wait()
	switch {
	case err == nil:
	case errors.Is(err, unix.ECHILD):
		// Reaped by the signal goroutine first.
		ctxlog.Debug(ctx, "foreground child reaped by handler", "pid", pid)
	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("wait for %s: %w", proc.Args[0], err)
		}
		// A non-zero exit or a signal death is the child's own
		// business; the interpreter reports nothing.
		ctxlog.Debug(ctx, "foreground child failed", "pid", pid, "state", exitErr.ProcessState)
	}

	return nil
}

// registerBackground inserts the new job at the head of the table and
// announces it immediately.
func (s *Shell) registerBackground(ctx context.Context, proc *exec.Cmd) {
	job := newJob(proc.Process.Pid, proc.Args[0])
	s.jobs.Add(job)

	fmt.Fprintf(s.stdout, "[%d] Started\n", job.Pid)
	ctxlog.Debug(ctx, "background job started", "pid", job.Pid, "name", job.Name)
}
