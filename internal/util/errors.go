package util

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrAlreadyResponded = errors.New("user has already responded to this survey")
	ErrTransaction      = errors.New("transaction aborted")
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError 字段级校验错误，Fields 为 字段 -> 原因
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, reason string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil 没有字段错误时返回 nil，避免 typed-nil 的 error
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
