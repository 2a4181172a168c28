package gperr

import (
	"fmt"
	"sync"
)

// Builder collects errors from possibly concurrent callers
// and joins them under a common message.
type Builder struct {
	about string
	errs  []error
	mu    sync.Mutex
}

func NewBuilder(about string) *Builder {
	return &Builder{about: about}
}

func (b *Builder) About() string {
	return b.about
}

// Error returns the joined error, or nil if nothing was added.
func (b *Builder) Error() Error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.errs) == 0 {
		return nil
	}
	errs := make([]error, len(b.errs))
	copy(errs, b.errs)
	if b.about == "" {
		return &nestedError{Extras: errs}
	}
	return &nestedError{Err: New(b.about), Extras: errs}
}

func (b *Builder) String() string {
	err := b.Error()
	if err == nil {
		return ""
	}
	return err.Error()
}

func (b *Builder) HasError() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.errs) > 0
}

// Add adds an error to the Builder.
//
// adding nil is no-op.
func (b *Builder) Add(err error) *Builder {
	if err == nil {
		return b
	}
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
	return b
}

func (b *Builder) Adds(err string) *Builder {
	return b.Add(newError(err))
}

func (b *Builder) Addf(format string, args ...any) *Builder {
	if len(args) > 0 {
		return b.Add(fmt.Errorf(format, args...))
	}
	return b.Adds(format)
}
