package gperr

import (
	"errors"
	"strings"
)

//nolint:errname
type withSubject struct {
	Subjects []string
	Err      error
}

const subjectSep = " > "

func PrependSubject(subject string, err error) error {
	if err == nil {
		return nil
	}

	//nolint:errorlint
	switch err := err.(type) {
	case *withSubject:
		return err.Prepend(subject)
	case Error:
		return err.Subject(subject)
	}
	if subject == "" {
		return err
	}
	return &withSubject{[]string{subject}, err}
}

func (err *withSubject) Prepend(subject string) *withSubject {
	if subject == "" {
		return err
	}
	clone := *err
	clone.Subjects = append(clone.Subjects[:len(clone.Subjects):len(clone.Subjects)], subject)
	return &clone
}

func (err *withSubject) Is(other error) bool {
	return errors.Is(err.Err, other)
}

func (err *withSubject) Unwrap() error {
	return err.Err
}

func (err *withSubject) Error() string {
	// subject is in reversed order
	n := len(err.Subjects)
	errStr := err.Err.Error()
	var sb strings.Builder
	for i := n - 1; i > 0; i-- {
		sb.WriteString(err.Subjects[i])
		sb.WriteString(subjectSep)
	}
	sb.WriteString(err.Subjects[0])
	sb.WriteString(": ")
	sb.WriteString(errStr)
	return sb.String()
}
