package service

import (
	"errors"
	"strings"

	"github.com/finaurial/finance-tracker/internal/repository"
)

var (
	ErrUnauthorized = errors.New("not authorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = repository.ErrNotFound
	ErrConflict     = errors.New("already exists")
)

// ValidationError carries every message produced while checking one request
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// invalid builds a ValidationError from one or more messages
func invalid(messages ...string) error {
	return &ValidationError{Messages: messages}
}

// checker accumulates validation messages
type checker struct {
	messages []string
}

func (c *checker) require(ok bool, message string) {
	if !ok {
		c.messages = append(c.messages, message)
	}
}

func (c *checker) err() error {
	if len(c.messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: c.messages}
}

// notFound replaces repository.ErrNotFound with a message naming the record
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: what + " not found"}
	}
	return err
}

// NotFoundError describes the missing record; it matches ErrNotFound
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
