package task

import (
	"context"
	"sync"
	"time"
)

// taskTimeout bounds how long a finishing task waits on its children.
const taskTimeout = 3 * time.Second

type (
	// Task controls objects' lifetime.
	//
	// Objects that use a task should call Finish when they are done,
	// so that the parent and GracefulShutdown stop waiting for them.
	Task struct {
		name   string
		parent *Task

		ctx    context.Context
		cancel context.CancelCauseFunc

		mu           sync.Mutex
		children     uint32
		childrenDone chan struct{}
		onFinished   []Callback
		onCancelWg   sync.WaitGroup

		needFinish bool
		finishOnce sync.Once
		finished   chan struct{}
	}
	Callback struct {
		fn    func()
		about string
	}
)

// Name returns the dotted name of the task, e.g. "server.tls".
func (t *Task) Name() string {
	return t.name
}

func (t *Task) String() string {
	return t.name
}

// Context returns the context associated with the task. This context is
// canceled when Finish of the task is called, or parent task is canceled.
func (t *Task) Context() context.Context {
	return t.ctx
}

// FinishCause returns the reason / error that caused the task to be finished.
func (t *Task) FinishCause() error {
	cause := context.Cause(t.ctx)
	if cause == nil {
		return t.ctx.Err()
	}
	return cause
}

// Finished returns a channel that is closed once the task
// and all of its callbacks are done.
func (t *Task) Finished() <-chan struct{} {
	return t.finished
}

// Subtask returns a new subtask with the given name, derived from the parent's context.
//
// needFinish defaults to true: the subtask is only done after Finish is called on it.
// Otherwise it finishes itself once its context is canceled.
func (t *Task) Subtask(name string, needFinish ...bool) *Task {
	nf := len(needFinish) == 0 || needFinish[0]

	if t != root {
		name = t.name + "." + name
	}
	child := &Task{
		name:       name,
		parent:     t,
		needFinish: nf,
		finished:   make(chan struct{}),
	}
	child.ctx, child.cancel = context.WithCancelCause(t.ctx)

	t.addChildCount()
	allTasks.Add(child)

	if !nf {
		go func() {
			<-child.ctx.Done()
			child.Finish(nil)
		}()
	}

	logger.Trace().Str("name", name).Msg("task started")
	return child
}

// OnCancel calls fn once the task context is canceled,
// without waiting for subtasks.
func (t *Task) OnCancel(about string, fn func()) {
	t.onCancelWg.Add(1)
	go func() {
		defer t.onCancelWg.Done()
		<-t.ctx.Done()
		t.invokeWithRecover(fn, about)
	}()
}

// OnFinished calls fn after the task is canceled and all subtasks are finished.
//
// Callbacks run in the order they were added.
func (t *Task) OnFinished(about string, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinished = append(t.onFinished, Callback{fn, about})
}

// Finish marks the task as finished and cancel its context.
//
// It blocks until subtasks and callbacks are done.
// Calling it more than once is safe.
func (t *Task) Finish(reason any) {
	t.finishOnce.Do(func() {
		t.cancel(fmtCause(reason))
		t.onCancelWg.Wait()
		if !waitWithTimeout(t.waitChildren()) {
			logger.Warn().
				Str("name", t.name).
				Strs("children", t.listChildren()).
				Msg("timeout waiting for subtasks to finish")
		}
		t.runOnFinished()
		close(t.finished)

		if t.parent != nil {
			t.parent.subChildCount()
			allTasks.Remove(t)
		}
		logger.Trace().Str("name", t.name).Err(t.FinishCause()).Msg("task finished")
	})
	<-t.finished
}
