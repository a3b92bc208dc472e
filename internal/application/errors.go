package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/oksasatya/go-user-service/internal/domain/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict is the store's uniqueness error, re-exported for callers of the service.
	ErrConflict = repository.ErrConflict
)

// ValidationError carries every field violation found in a request.
type ValidationError struct {
	Fields map[string]string
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
