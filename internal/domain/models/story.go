package models

import "strings"

type Language string

const (
	LangEnglish Language = "en"
	LangTelugu  Language = "te"
	LangHindi   Language = "hi"
)

// SupportedLanguages lists every language the panel can author content in,
// in wire order.
func SupportedLanguages() []Language {
	return []Language{LangEnglish, LangTelugu, LangHindi}
}

func IsSupportedLanguage(lang Language) bool {
	switch lang {
	case LangEnglish, LangTelugu, LangHindi:
		return true
	}
	return false
}

// LangMap holds one localized string per language. Absent keys and empty
// strings both mean "not populated".
type LangMap map[Language]string

func (m LangMap) Get(lang Language) string {
	if m == nil {
		return ""
	}
	return m[lang]
}

func (m LangMap) IsEmpty() bool {
	for _, v := range m {
		if v != "" {
			return false
		}
	}
	return true
}

// PopulatedLanguages returns the languages with non-empty values.
func (m LangMap) PopulatedLanguages() []Language {
	var out []Language
	for _, lang := range SupportedLanguages() {
		if m.Get(lang) != "" {
			out = append(out, lang)
		}
	}
	return out
}

// ContainsFold reports whether any localized value contains substr,
// case-insensitively.
func (m LangMap) ContainsFold(substr string) bool {
	needle := strings.ToLower(substr)
	for _, lang := range SupportedLanguages() {
		if v := m.Get(lang); v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

type Story struct {
	ID             string     `json:"id"`
	Name           LangMap    `json:"name"`
	Languages      []Language `json:"languages"`
	CoverImageURL  string     `json:"storyCoverImage,omitempty"`
	BannerImageURL string     `json:"bannerImage,omitempty"`
	Parts          []Part     `json:"parts,omitempty"`
	Toddler        []Part     `json:"toddler,omitempty"`
	Kids           []Part     `json:"kids,omitempty"`
}

func (s Story) HasLanguage(lang Language) bool {
	for _, l := range s.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// NameMatches reports an exact name match in any supported language.
func (s Story) NameMatches(name string) bool {
	for _, lang := range SupportedLanguages() {
		if v := s.Name.Get(lang); v != "" && v == name {
			return true
		}
	}
	return false
}

type Part struct {
	ID           string     `json:"id"`
	StoryID      string     `json:"storyId"`
	Title        LangMap    `json:"title"`
	Date         LangMap    `json:"date"`
	Description  LangMap    `json:"description"`
	TimeToRead   LangMap    `json:"timeToRead"`
	StoryType    LangMap    `json:"storyType"`
	ThumbnailURL string     `json:"thumbnailImage,omitempty"`
	Languages    []Language `json:"languages,omitempty"`
	Sections     []Section  `json:"sections"`
}

type Section struct {
	Heading  LangMap `json:"heading"`
	Quote    LangMap `json:"quote"`
	Text     LangMap `json:"text"`
	ImageURL string  `json:"image,omitempty"`
}

// AgeVariant selects which collection of a story a part belongs to.
type AgeVariant string

const (
	VariantDefault AgeVariant = ""
	VariantToddler AgeVariant = "toddler"
	VariantKids    AgeVariant = "kids"
)

func IsValidAgeVariant(v AgeVariant) bool {
	switch v {
	case VariantDefault, VariantToddler, VariantKids:
		return true
	}
	return false
}
