package models

import (
	"time"
	"unicode/utf8"
)

const draftTitleMaxLen = 50

// AuthoringForm is the snapshot of the authoring assistant's input fields that
// travels with a draft.
type AuthoringForm struct {
	Prompt      string     `json:"prompt"`
	SourceText  string     `json:"sourceText"`
	StoryID     string     `json:"storyId,omitempty"`
	AgeVariant  AgeVariant `json:"ageVariant,omitempty"`
	Title       LangMap    `json:"title,omitempty"`
	Date        LangMap    `json:"date,omitempty"`
	Description LangMap    `json:"description,omitempty"`
	TimeToRead  LangMap    `json:"timeToRead,omitempty"`
	StoryType   LangMap    `json:"storyType,omitempty"`
}

// Draft is an unsynced snapshot of in-progress authoring. Its ID is the
// creation time in unix milliseconds.
type Draft struct {
	ID        int64              `json:"id" db:"id"`
	Title     string             `json:"title" db:"title"`
	Form      AuthoringForm      `json:"form" db:"form"`
	Sections  []GeneratedSection `json:"sections" db:"sections"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

// NewDraft builds a draft stamped with now. The title is derived from the
// source content, truncated to 50 characters with an ellipsis.
func NewDraft(form AuthoringForm, sections []GeneratedSection, now time.Time) Draft {
	source := form.SourceText
	if source == "" {
		source = form.Prompt
	}

	return Draft{
		ID:        now.UnixMilli(),
		Title:     DraftTitle(source),
		Form:      form,
		Sections:  sections,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func DraftTitle(source string) string {
	if utf8.RuneCountInString(source) <= draftTitleMaxLen {
		return source
	}

	runes := []rune(source)
	return string(runes[:draftTitleMaxLen]) + "…"
}

// GateState tracks the draft-confirmation gate of an authoring workspace.
type GateState string

const (
	GateIdle                GateState = "idle"
	GatePendingConfirmation GateState = "pending_confirmation"
	GateSavingDraft         GateState = "saving_draft"
	GateDiscarding          GateState = "discarding"
)

// PendingSnapshot is the workspace content captured when the gate opens. The
// confirmation path always consumes this capture, never the live workspace.
type PendingSnapshot struct {
	Form     AuthoringForm      `json:"form"`
	Sections []GeneratedSection `json:"sections"`
}

// Workspace is the per-admin authoring working state.
type Workspace struct {
	AdminID   string             `json:"admin_id"`
	Form      AuthoringForm      `json:"form"`
	Sections  []GeneratedSection `json:"sections"`
	Source    string             `json:"source,omitempty"`
	GateState GateState          `json:"gate_state"`
	Pending   *PendingSnapshot   `json:"pending,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}
