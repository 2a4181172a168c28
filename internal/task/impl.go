package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

func (t *Task) addChildCount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.children++
	if t.children == 1 {
		t.childrenDone = make(chan struct{})
	}
}

func (t *Task) subChildCount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.children--
	switch t.children {
	case 0:
		close(t.childrenDone)
	case ^uint32(0):
		panic("negative child count")
	}
}

func (t *Task) waitChildren() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.children == 0 {
		return nil
	}
	return t.childrenDone
}

func (t *Task) runOnFinished() {
	t.mu.Lock()
	callbacks := t.onFinished
	t.onFinished = nil
	t.mu.Unlock()

	for _, c := range callbacks {
		t.invokeWithRecover(c.fn, c.about)
	}
}

func (t *Task) invokeWithRecover(fn func(), about string) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error().
				Str("name", t.name).
				Interface("err", err).
				Msg("panic in " + about)
		}
	}()
	fn()
}

// listChildren is for debug output only.
func (t *Task) listChildren() []string {
	var children []string
	allTasks.RangeAll(func(child *Task) {
		if child.parent == t {
			children = append(children, strings.TrimPrefix(child.name, t.name+"."))
		}
	})
	return children
}

func waitWithTimeout(ch <-chan struct{}) bool {
	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(taskTimeout):
		return false
	}
}

func fmtCause(cause any) error {
	switch cause := cause.(type) {
	case nil:
		return nil
	case error:
		return cause
	case string:
		return errors.New(cause)
	default:
		return fmt.Errorf("%v", cause)
	}
}
