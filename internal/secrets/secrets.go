// Package secrets resolves named credentials from a process-scoped,
// read-only-after-init store. Values are never logged and never leave
// the process except as transport credentials.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// NotFoundError reports a secret reference with no backing value.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret %q not found", e.Name)
}

// Store holds secrets loaded once at process start. Safe for concurrent
// reads; never mutated after Load returns.
type Store struct {
	values map[string]string
}

// Load builds a store from the dotenv file at path merged with the
// process environment. Process environment wins on conflicts. A missing
// file is not an error: the environment alone backs the store.
func Load(path string) (*Store, error) {
	values := make(map[string]string)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileValues, err := godotenv.Read(path)
			if err != nil {
				return nil, fmt.Errorf("reading secrets file %s: %w", path, err)
			}
			for k, v := range fileValues {
				values[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		values[k] = v
	}

	return &Store{values: values}, nil
}

// FromMap builds a store from explicit values. Test seam.
func FromMap(values map[string]string) *Store {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Store{values: copied}
}

// Get returns the value for name, or a NotFoundError. The value must
// not be logged by callers.
func (s *Store) Get(name string) (string, error) {
	v, ok := s.values[name]
	if !ok || v == "" {
		return "", &NotFoundError{Name: name}
	}
	return v, nil
}

// Has reports whether name resolves without exposing the value.
func (s *Store) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}
