package forms

import (
	"sort"
	"strings"
)

// Errors collects validation failures keyed by form field. It satisfies the
// error interface so services can return it through a plain error value and
// handlers can pick it apart with errors.As.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Field(field string) []string {
	return e[field]
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}
