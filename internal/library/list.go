package library

import (
	"cmp"
	"slices"
	"strings"

	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/pagination"
	"github.com/JaimeStill/promptvault/pkg/query"
)

var comparators = map[string]func(a, b prompts.Prompt) int{
	"title": func(a, b prompts.Prompt) int {
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	},
	"createdat": func(a, b prompts.Prompt) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	},
	"model": func(a, b prompts.Prompt) int {
		return cmp.Compare(a.Model, b.Model)
	},
	"type": func(a, b prompts.Prompt) int {
		return cmp.Compare(a.Category, b.Category)
	},
}

// List filters the record set, orders it, and returns the requested page.
// Without sort fields the library order (newest first) is kept.
// Unknown sort fields are ignored.
func (l *Library) List(filter prompts.Filter, page pagination.PageRequest) pagination.PageResult[prompts.Prompt] {
	l.mu.RLock()
	items := filter.Apply(l.records)
	l.mu.RUnlock()

	if len(page.Sort) > 0 {
		sortPrompts(items, page.Sort)
	}

	return pagination.Paginate(items, page)
}

func sortPrompts(items []prompts.Prompt, fields []query.SortField) {
	slices.SortStableFunc(items, func(a, b prompts.Prompt) int {
		for _, f := range fields {
			compare, ok := comparators[strings.ToLower(f.Field)]
			if !ok {
				continue
			}
			c := compare(a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
