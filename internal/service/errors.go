package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnknownProductKind = errors.New("unknown product kind")
	ErrProductNotFound    = errors.New("product not found")
	ErrAlreadyPurchased   = errors.New("product already purchased")
	ErrForbidden          = errors.New("forbidden")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError collects every rejected request field with its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
