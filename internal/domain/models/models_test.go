package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteSection_Renumbers(t *testing.T) {
	sections := []GeneratedSection{
		{SectionNumber: 1, Heading: LangMap{LangEnglish: "One"}},
		{SectionNumber: 2, Heading: LangMap{LangEnglish: "Two"}},
		{SectionNumber: 3, Heading: LangMap{LangEnglish: "Three"}},
	}

	got := DeleteSection(sections, 2)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].SectionNumber)
	assert.Equal(t, "One", got[0].Heading.Get(LangEnglish))
	assert.Equal(t, 2, got[1].SectionNumber)
	assert.Equal(t, "Three", got[1].Heading.Get(LangEnglish))
}

func TestDeleteSection_OutOfRangeIsNoop(t *testing.T) {
	sections := []GeneratedSection{{SectionNumber: 1}}

	got := DeleteSection(sections, 5)

	assert.Equal(t, sections, got)
}

func TestDraftTitle_Truncation(t *testing.T) {
	short := "a short prompt"
	assert.Equal(t, short, DraftTitle(short))

	long := strings.Repeat("x", 80)
	title := DraftTitle(long)
	assert.Equal(t, strings.Repeat("x", 50)+"…", title)
}

func TestDraftTitle_CountsRunesNotBytes(t *testing.T) {
	// 50 multi-byte runes stay untouched
	src := strings.Repeat("చ", 50)
	assert.Equal(t, src, DraftTitle(src))
}

func TestNewDraft_PrefersSourceText(t *testing.T) {
	now := time.Now()

	d := NewDraft(AuthoringForm{Prompt: "prompt", SourceText: "source"}, nil, now)
	assert.Equal(t, "source", d.Title)
	assert.Equal(t, now.UnixMilli(), d.ID)

	d = NewDraft(AuthoringForm{Prompt: "prompt"}, nil, now)
	assert.Equal(t, "prompt", d.Title)
}

func TestLangMap_ContainsFold(t *testing.T) {
	m := LangMap{LangEnglish: "The Fox", LangTelugu: "చంద్రుడు"}

	assert.True(t, m.ContainsFold("fox"))
	assert.True(t, m.ContainsFold("FOX"))
	assert.True(t, m.ContainsFold("చంద్ర"))
	assert.False(t, m.ContainsFold("moon"))
}

func TestLangMap_PopulatedLanguages(t *testing.T) {
	m := LangMap{LangEnglish: "x", LangTelugu: "", LangHindi: "y"}

	assert.Equal(t, []Language{LangEnglish, LangHindi}, m.PopulatedLanguages())
}
