package catalog

import (
	"fmt"
	"strings"
)

// CompletionFilter narrows a module listing by completion state.
type CompletionFilter string

const (
	FilterAll        CompletionFilter = "all"
	FilterCompleted  CompletionFilter = "completed"
	FilterIncomplete CompletionFilter = "incomplete"
)

// ParseCompletionFilter maps user input onto a filter. Empty input means all.
func ParseCompletionFilter(value string) (CompletionFilter, error) {
	switch CompletionFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCompleted:
		return FilterCompleted, nil
	case FilterIncomplete:
		return FilterIncomplete, nil
	}
	return "", fmt.Errorf("catalog: unknown filter %q (want all, completed or incomplete)", value)
}

// Search returns the modules whose title or description contains query
// (case-insensitive) and whose completion state passes filter. isCompleted may
// be nil, in which case every module counts as incomplete.
func Search(modules []Module, query string, filter CompletionFilter, isCompleted func(id string) bool) []Module {
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []Module
	for _, mod := range modules {
		if needle != "" &&
			!strings.Contains(strings.ToLower(mod.Title), needle) &&
			!strings.Contains(strings.ToLower(mod.Description), needle) {
			continue
		}
		done := isCompleted != nil && isCompleted(mod.ID)
		switch filter {
		case FilterCompleted:
			if !done {
				continue
			}
		case FilterIncomplete:
			if done {
				continue
			}
		}
		out = append(out, mod)
	}
	return out
}
