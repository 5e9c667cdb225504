// Package shell implements the interpreter core: two actors trading a
// single pending line over a rendezvous, a background job table, and a
// signal goroutine that reaps children and routes interrupts.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chzyer/readline"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"gosh/internal/config"
	"gosh/internal/ctxlog"
)

// noForeground is the foreground-slot sentinel.
const noForeground = -1

type Shell struct {
	cfg    *config.Config
	src    lineSource
	stdout io.Writer
	stderr io.Writer

	jobs *JobTable
	// fgPid holds the pid of the one foreground child, or noForeground.
	// Written by the executor around its wait and by the signal
	// goroutine when it reaps the foreground child first.
	fgPid atomic.Int64

	// pending and done form the single-slot handshake: the input actor
	// sends a line and blocks on done; the executor actor replies on
	// done once the command has fully run. At most one command is ever
	// in flight.
	pending chan string
	done    chan struct{}

	// shutdown is set by the exit builtin and polled by both actors at
	// their loop boundaries.
	shutdown atomic.Bool

	sigChan chan os.Signal
}

// New builds a shell reading from stdin. A terminal gets a readline
// editor; piped input falls back to a plain buffered reader so scripts
// work the same way.
func New(cfg *config.Config) (*Shell, error) {
	var src lineSource
	if term.IsTerminal(int(os.Stdin.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt: cfg.Prompt,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing readline: %w", err)
		}
		src = &readlineSource{rl: rl}
	} else {
		src = newBufioSource(os.Stdin, os.Stdout, cfg.Prompt)
	}

	return newShell(cfg, src, os.Stdout, os.Stderr), nil
}

func newShell(cfg *config.Config, src lineSource, stdout, stderr io.Writer) *Shell {
	s := &Shell{
		cfg:     cfg,
		src:     src,
		stdout:  stdout,
		stderr:  stderr,
		jobs:    NewJobTable(),
		pending: make(chan string, 1),
		done:    make(chan struct{}, 1),
		sigChan: make(chan os.Signal, 16),
	}
	s.fgPid.Store(noForeground)
	return s
}

// Run starts the signal goroutine and both actors, then blocks until
// the actors have wound down. The exit code of the process is zero
// exactly when Run returns nil.
func (s *Shell) Run(ctx context.Context) error {
	signal.Notify(s.sigChan, unix.SIGCHLD, unix.SIGINT)

	sigDone := make(chan struct{})
	go func() {
		defer close(sigDone)
		s.handleSignals(ctx)
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.inputActor(ctx)
	}()
	go func() {
		defer wg.Done()
		s.executorActor(ctx)
	}()
	wg.Wait()

	signal.Stop(s.sigChan)
	close(s.sigChan)
	<-sigDone

	return s.src.Close()
}

// inputActor shows the prompt, reads one line and hands it to the
// executor actor, then blocks until the command has fully run. Input
// is never read while a command is in flight.
func (s *Shell) inputActor(ctx context.Context) {
	for !s.shutdown.Load() {
		s.printFinished()

		line, err := s.src.ReadLine()
		switch {
		case err == nil:
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			// End of input behaves exactly like typing exit.
			line = exitCommand
			fmt.Fprintln(s.stdout, exitCommand)
		default:
			ctxlog.Error(ctx, "read failed, shutting down", "err", err)
			line = exitCommand
		}

		if len(line) > s.cfg.MaxLineLen {
			fmt.Fprintf(s.stderr, "Input is too long. Maximum length is %d\n", s.cfg.MaxLineLen)
			continue
		}

		s.pending <- line
		<-s.done
	}
}

// executorActor runs one command at a time off the handshake.
func (s *Shell) executorActor(ctx context.Context) {
	for {
		line := <-s.pending
		s.execute(ctx, line)
		s.done <- struct{}{}

		if s.shutdown.Load() {
			return
		}
	}
}

// printFinished announces and removes every finished job. Each job is
// reported exactly once; order across simultaneously finished jobs is
// unspecified.
func (s *Shell) printFinished() {
	for _, j := range s.jobs.TakeFinished() {
		fmt.Fprintf(s.stdout, "[%d] Finished\n", j.Pid)
	}
}

// showPrompt redisplays the prompt outside the normal read cycle, for
// an interrupt that arrives with no foreground child.
func (s *Shell) showPrompt() {
	s.printFinished()
	fmt.Fprint(s.stdout, s.cfg.Prompt)
}

// lineSource yields one input line at a time, without the trailing
// newline.
type lineSource interface {
	ReadLine() (string, error)
	Close() error
}

type readlineSource struct {
	rl *readline.Instance
}

func (r *readlineSource) ReadLine() (string, error) {
	return r.rl.Readline()
}

func (r *readlineSource) Close() error {
	return r.rl.Close()
}

type bufioSource struct {
	reader *bufio.Reader
	out    io.Writer
	prompt string
}

func newBufioSource(in io.Reader, out io.Writer, prompt string) *bufioSource {
	return &bufioSource{
		reader: bufio.NewReader(in),
		out:    out,
		prompt: prompt,
	}
}

func (b *bufioSource) ReadLine() (string, error) {
	fmt.Fprint(b.out, b.prompt)

	line, err := b.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			// Final line without a newline: run it, report EOF on the
			// next read.
			fmt.Fprintln(b.out)
			return line, nil
		}
		return "", err
	}

	return strings.TrimSuffix(line, "\n"), nil
}

func (b *bufioSource) Close() error {
	return nil
}
