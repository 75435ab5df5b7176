package errors

import (
	// Go Internal Packages
	"sort"
	"strings"
)

// ValidationErrors collects field level problems before returning them as one error.
type ValidationErrors struct {
	fields map[string][]string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string][]string)}
}

// Add records a problem for the given field.
func (v *ValidationErrors) Add(field, problem string) {
	v.fields[field] = append(v.fields[field], problem)
}

func (v *ValidationErrors) Len() int {
	return len(v.fields)
}

func (v *ValidationErrors) Error() string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+strings.Join(v.fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when nothing was added.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return E(Invalid, "validation failed", v)
}
