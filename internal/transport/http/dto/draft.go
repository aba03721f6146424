package dto

import (
	"time"

	"storyadmin/internal/domain/models"
)

// DraftSummary is the list representation of a stored draft.
type DraftSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Sections  int       `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
}

func NewDraftSummary(d models.Draft) DraftSummary {
	return DraftSummary{
		ID:        d.ID,
		Title:     d.Title,
		Sections:  len(d.Sections),
		CreatedAt: d.CreatedAt,
	}
}

func NewDraftSummaries(drafts []models.Draft) []DraftSummary {
	out := make([]DraftSummary, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, NewDraftSummary(d))
	}
	return out
}
