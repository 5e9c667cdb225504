package shell

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// Job tracks one detached child process.
type Job struct {
	Pid  int
	Name string

	// running is written by the signal goroutine and read everywhere
	// else, so it is atomic rather than guarded by the table lock.
	running atomic.Bool
}

func newJob(pid int, name string) *Job {
	j := &Job{Pid: pid, Name: name}
	j.running.Store(true)
	return j
}

// Running reports whether the child has not yet been reaped.
func (j *Job) Running() bool {
	return j.running.Load()
}

// JobTable holds the background jobs. The executor inserts, the signal
// goroutine flips liveness, the prompt removes; no two components
// remove the same entry. The mutex guards only the slice structure and
// is never held across a blocking call.
type JobTable struct {
	mu   sync.Mutex
	jobs []*Job
}

func NewJobTable() *JobTable {
	return &JobTable{}
}

// Add inserts a job at the head of the table.
func (t *JobTable) Add(j *Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = append([]*Job{j}, t.jobs...)
}

// MarkFinished flips the liveness of the job with the given pid and
// reports whether such a job exists. Called only from the signal
// goroutine.
func (t *JobTable) MarkFinished(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		if j.Pid == pid {
			j.running.Store(false)
			return true
		}
	}
	return false
}

// TakeFinished removes every finished job from the table and returns
// them, so each job is announced exactly once.
func (t *JobTable) TakeFinished() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var finished []*Job
	kept := t.jobs[:0]
	for _, j := range t.jobs {
		if j.Running() {
			kept = append(kept, j)
		} else {
			finished = append(finished, j)
		}
	}
	t.jobs = kept

	return finished
}

// KillRunning sends SIGKILL to every job still running and clears the
// table. A job that terminated between the liveness check and the kill
// is not an error.
func (t *JobTable) KillRunning() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs *multierror.Error
	for _, j := range t.jobs {
		if !j.Running() {
			continue
		}
		if err := unix.Kill(j.Pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
			errs = multierror.Append(errs, fmt.Errorf("kill %d (%s): %w", j.Pid, j.Name, err))
		}
	}
	t.jobs = nil

	return errs.ErrorOrNil()
}

// Len returns the number of tracked jobs.
func (t *JobTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}
