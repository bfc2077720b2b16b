package api

import (
	"path"

	"marquee/internal/inventory"
	"marquee/internal/selection"
	"marquee/internal/store"
)

// FromSubmission converts a stored submission to its API representation.
func FromSubmission(sub *store.Submission) Submission {
	if sub == nil {
		return Submission{}
	}
	dto := Submission{
		ID:         sub.ID,
		Memory:     sub.Memory,
		Resolution: sub.Resolution,
		Status:     string(sub.Status),
	}
	if sub.GuestName != nil {
		name := *sub.GuestName
		dto.GuestName = &name
	}
	if !sub.CreatedAt.IsZero() {
		dto.CreatedAt = sub.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if sub.ReviewedAt != nil {
		reviewed := sub.ReviewedAt.UTC().Format(dateTimeFormat)
		dto.ReviewedAt = &reviewed
	}
	return dto
}

// FromSubmissions converts a slice, never returning nil.
func FromSubmissions(subs []*store.Submission) []Submission {
	out := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromSubmission(sub))
	}
	return out
}

// FromCounts keys counts by status name, including zero entries.
func FromCounts(counts store.Counts) map[string]int {
	out := make(map[string]int, len(counts))
	for _, status := range store.AllStatuses() {
		out[string(status)] = counts[status]
	}
	return out
}

// FromPick converts a selector pick.
func FromPick(pick selection.Pick) VideoPick {
	dto := VideoPick{
		Category:   pick.Category,
		VideoCount: pick.VideoCount,
		PlayCount:  pick.PlayCount,
	}
	if pick.VideoPath != "" {
		p := pick.VideoPath
		dto.VideoPath = &p
	}
	return dto
}

// FromPlay converts a recorded play.
func FromPlay(play selection.Play) PlayResult {
	dto := PlayResult{Category: play.Category, NewPlayCount: play.NewPlayCount}
	if play.VideoPath != "" {
		p := play.VideoPath
		dto.VideoPath = &p
	}
	return dto
}

// FromInventory lists every category with per-video play counts.
func FromInventory(inv *inventory.Inventory, counts map[string]int) InventoryResponse {
	resp := InventoryResponse{Categories: []InventoryCategory{}}
	for _, name := range inv.Categories() {
		category := InventoryCategory{
			Name:        name,
			DisplayName: inventory.DisplayName(name),
			Videos:      []InventoryVideo{},
		}
		for _, id := range inv.Videos(name) {
			category.Videos = append(category.Videos, InventoryVideo{
				Path:      id,
				Filename:  path.Base(id),
				PlayCount: counts[id],
			})
		}
		resp.Categories = append(resp.Categories, category)
	}
	resp.TotalCategories = len(resp.Categories)
	resp.TotalVideos = inv.TotalVideos()
	for _, n := range counts {
		resp.TotalPlays += n
	}
	return resp
}
