// Package parser turns one input line into a Command: an argument
// vector plus optional redirection targets and a background marker.
package parser

import (
	"github.com/kballard/go-shellquote"
)

// Metacharacters recognized by the grammar. Each one terminates the
// token before it; '>' and '<' additionally claim the token after it.
const (
	runInBg  = '&'
	redirOut = '>'
	redirIn  = '<'
)

// Command is the parsed form of a single input line. It is transient:
// built by Parse, consumed by the executor, then dropped.
type Command struct {
	// Args holds the program name followed by its arguments.
	Args []string
	// In is the input redirection target, empty when absent.
	In string
	// Out is the output redirection target, empty when absent.
	Out string
	// Background reports whether the command should run detached.
	Background bool
}

// Empty reports whether the line held no command at all. An empty
// command is a no-op, not an error.
func (c *Command) Empty() bool {
	return len(c.Args) == 0
}

// String renders the argument vector for diagnostics and logs.
func (c *Command) String() string {
	return shellquote.Join(c.Args...)
}

// Parse tokenizes line. Tokens split on runs of whitespace, and the
// metacharacters need no surrounding whitespace: "ls>out" redirects
// exactly like "ls > out". A redirection operator captures the single
// token following it; '&' captures nothing. An operator with no
// following token leaves the redirect unset.
func Parse(line string) *Command {
	cmd := &Command{}

	// dest says where the token being scanned will land once it
	// terminates: the argument list or one of the redirect slots.
	dest := destArg
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := line[start:end]
		start = -1

		switch dest {
		case destIn:
			cmd.In = tok
		case destOut:
			cmd.Out = tok
		default:
			cmd.Args = append(cmd.Args, tok)
		}
		dest = destArg
	}

	for i := 0; i < len(line); i++ {
		switch b := line[i]; b {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			flush(i)
		case runInBg:
			flush(i)
			cmd.Background = true
		case redirOut:
			flush(i)
			dest = destOut
		case redirIn:
			flush(i)
			dest = destIn
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(line))

	return cmd
}

type tokenDest int

const (
	destArg tokenDest = iota
	destIn
	destOut
)
