package library

import (
	"github.com/samber/lo"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

// ToggleSelection adds or removes id from the export selection and reports
// whether it is now selected.
func (l *Library) ToggleSelection(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index(id) < 0 {
		return false, prompts.ErrNotFound
	}

	if _, ok := l.selection[id]; ok {
		delete(l.selection, id)
		return false, nil
	}

	l.selection[id] = struct{}{}
	return true, nil
}

// Select sets the export selection to ids, ignoring unknown ids.
func (l *Library) Select(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if l.index(id) >= 0 {
			l.selection[id] = struct{}{}
		}
	}
}

// Selected returns the selected records in library order.
func (l *Library) Selected() []prompts.Prompt {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.records, func(p prompts.Prompt, _ int) bool {
		_, ok := l.selection[p.ID]
		return ok
	})
}

// SelectedIDs returns the selected ids in library order.
func (l *Library) SelectedIDs() []string {
	return lo.Map(l.Selected(), func(p prompts.Prompt, _ int) string {
		return p.ID
	})
}

// ClearSelection empties the export selection.
func (l *Library) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.selection)
}

// pruneSelection drops selected ids that no longer exist in the record set.
// The caller must hold the write lock.
func (l *Library) pruneSelection() {
	present := lo.SliceToMap(l.records, func(p prompts.Prompt) (string, struct{}) {
		return p.ID, struct{}{}
	})
	for id := range l.selection {
		if _, ok := present[id]; !ok {
			delete(l.selection, id)
		}
	}
}
