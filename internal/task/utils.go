package task

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/maskserve/maskserve/internal/logging"
	F "github.com/maskserve/maskserve/internal/utils/functional"
)

var ErrProgramExiting = errors.New("program exiting")

var logger = logging.With().Str("module", "task").Logger()

var (
	root     = newRoot()
	allTasks = F.NewSet[*Task]()
)

func testCleanup() {
	root = newRoot()
	allTasks.Clear()
}

// RootTask returns a new Task with the given name, derived from the root context.
func RootTask(name string, needFinish ...bool) *Task {
	return root.Subtask(name, needFinish...)
}

func newRoot() *Task {
	t := &Task{name: "root", finished: make(chan struct{})}
	t.ctx, t.cancel = context.WithCancelCause(context.Background())
	return t
}

// GracefulShutdown cancels every task and waits for them to finish,
// up to the given timeout.
//
// If the timeout is exceeded, it logs the tasks that were
// still running and returns context.DeadlineExceeded.
func GracefulShutdown(timeout time.Duration) error {
	r := root
	go r.Finish(ErrProgramExiting)

	select {
	case <-r.finished:
		return nil
	case <-time.After(timeout):
		b, err := json.Marshal(DebugTaskList())
		if err != nil {
			logger.Warn().Err(err).Msg("failed to marshal tasks")
			return context.DeadlineExceeded
		}
		logger.Warn().RawJSON("tasks", b).Msgf("Timeout waiting for these %d tasks to finish", allTasks.Size())
		return context.DeadlineExceeded
	}
}

// DebugTaskList returns the sorted names of all running tasks.
func DebugTaskList() []string {
	l := make([]string, 0, allTasks.Size())

	allTasks.RangeAll(func(t *Task) {
		l = append(l, t.name)
	})

	slices.Sort(l)
	return l
}
