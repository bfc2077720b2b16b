package inventory

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Inventory is an immutable snapshot of playable videos grouped by category.
type Inventory struct {
	categories map[string][]string
	owner      map[string]string
	ScannedAt  time.Time
}

func newInventory(categories map[string][]string, scannedAt time.Time) *Inventory {
	owner := make(map[string]string)
	for category, videos := range categories {
		for _, id := range videos {
			owner[id] = category
		}
	}
	return &Inventory{categories: categories, owner: owner, ScannedAt: scannedAt}
}

// Empty returns an inventory with no categories.
func Empty() *Inventory {
	return newInventory(map[string][]string{}, time.Time{})
}

// Videos returns the sorted video ids for category. Unknown categories yield nil.
func (inv *Inventory) Videos(category string) []string {
	if inv == nil {
		return nil
	}
	videos := inv.categories[category]
	if len(videos) == 0 {
		return nil
	}
	out := make([]string, len(videos))
	copy(out, videos)
	return out
}

// Contains reports whether id is a video of category.
func (inv *Inventory) Contains(category, id string) bool {
	if inv == nil {
		return false
	}
	owner, ok := inv.owner[id]
	return ok && owner == category
}

// Known reports whether id exists in any category.
func (inv *Inventory) Known(id string) bool {
	if inv == nil {
		return false
	}
	_, ok := inv.owner[id]
	return ok
}

// Categories returns category names in sorted order, including empty ones.
func (inv *Inventory) Categories() []string {
	if inv == nil {
		return nil
	}
	names := make([]string, 0, len(inv.categories))
	for name := range inv.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalVideos counts videos across all categories.
func (inv *Inventory) TotalVideos() int {
	if inv == nil {
		return 0
	}
	return len(inv.owner)
}

// All returns the set of every video id.
func (inv *Inventory) All() map[string]struct{} {
	out := make(map[string]struct{})
	if inv == nil {
		return out
	}
	for id := range inv.owner {
		out[id] = struct{}{}
	}
	return out
}

// DisplayName renders a category directory name for humans:
// "new_year-countdown" becomes "New Year Countdown".
func DisplayName(category string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(category)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return category
	}
	return cases.Title(language.Und).String(cleaned)
}
