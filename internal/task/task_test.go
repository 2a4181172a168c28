package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func testTask() *Task {
	return RootTask("test", false)
}

func TestSubtaskName(t *testing.T) {
	t.Cleanup(testCleanup)

	parent := RootTask("server")
	child := parent.Subtask("tls")
	ExpectEqual(t, parent.Name(), "server")
	ExpectEqual(t, child.Name(), "server.tls")

	child.Finish(nil)
	parent.Finish(nil)
}

func TestChildTaskCancellation(t *testing.T) {
	t.Cleanup(testCleanup)

	parent := testTask()
	child := parent.Subtask("child")

	go func() {
		defer child.Finish(nil)
		<-child.Context().Done()
	}()

	parent.cancel(nil) // should also cancel child

	select {
	case <-child.Finished():
		ExpectError(t, context.Canceled, child.Context().Err())
	case <-time.After(time.Second):
		t.Fatal("subTask context was not canceled as expected")
	}
}

func TestTaskOnCancelOnFinished(t *testing.T) {
	t.Cleanup(testCleanup)
	task := testTask()

	var shouldTrueOnCancel bool
	var shouldTrueOnFinish bool

	task.OnCancel("", func() {
		shouldTrueOnCancel = true
	})
	task.OnFinished("", func() {
		shouldTrueOnFinish = true
	})

	ExpectFalse(t, shouldTrueOnFinish)
	task.Finish(nil)
	ExpectTrue(t, shouldTrueOnCancel)
	ExpectTrue(t, shouldTrueOnFinish)
}

func TestOnFinishedWaitsForSubtasks(t *testing.T) {
	t.Cleanup(testCleanup)
	parent := testTask()
	child := parent.Subtask("worker")

	var childDone atomic.Bool
	go func() {
		<-child.Context().Done()
		time.Sleep(20 * time.Millisecond)
		childDone.Store(true)
		child.Finish(nil)
	}()

	var sawChildDone bool
	parent.OnFinished("check", func() {
		sawChildDone = childDone.Load()
	})
	parent.Finish("done")
	ExpectTrue(t, sawChildDone)
	ExpectEqual(t, parent.FinishCause().Error(), "done")
}

func TestCallbackPanicRecovered(t *testing.T) {
	t.Cleanup(testCleanup)
	task := testTask()

	var after bool
	task.OnFinished("panics", func() { panic("boom") })
	task.OnFinished("after", func() { after = true })
	task.Finish(nil)
	ExpectTrue(t, after)
}

func TestCommonFlowWithGracefulShutdown(t *testing.T) {
	t.Cleanup(testCleanup)
	task := RootTask("test")

	finished := false

	task.OnFinished("", func() {
		finished = true
	})

	go func() {
		defer task.Finish(nil)
		<-task.Context().Done()
	}()

	ExpectNoError(t, GracefulShutdown(1*time.Second))
	ExpectTrue(t, finished)

	ExpectError(t, context.Canceled, task.Context().Err())
	ExpectError(t, ErrProgramExiting, task.FinishCause())
}

func TestTimeoutOnGracefulShutdown(t *testing.T) {
	t.Cleanup(testCleanup)
	_ = RootTask("never finishes")

	ExpectError(t, context.DeadlineExceeded, GracefulShutdown(time.Millisecond))
}

func TestFinishMultipleCalls(t *testing.T) {
	t.Cleanup(testCleanup)
	task := testTask()
	var wg sync.WaitGroup
	wg.Add(5)
	for range 5 {
		go func() {
			defer wg.Done()
			task.Finish(nil)
		}()
	}
	wg.Wait()
}

func TestFmtCause(t *testing.T) {
	errFoo := errors.New("foo")
	ExpectNoError(t, fmtCause(nil))
	ExpectError(t, errFoo, fmtCause(errFoo))
	ExpectEqual(t, fmtCause("bar").Error(), "bar")
	ExpectEqual(t, fmtCause(42).Error(), "42")
}
