package dto

import (
	"fmt"
	"mime/multipart"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/storyapi"
)

// SectionForm is one section of a part form.
type SectionForm struct {
	Heading  models.LangMap `json:"heading"`
	Quote    models.LangMap `json:"quote"`
	Text     models.LangMap `json:"text"`
	ImageURL string         `json:"imageUrl"`

	Image *multipart.FileHeader `json:"-"`
}

// PartForm is the parsed part create/update form. An empty PartID means
// create; sections arrive as a JSON field with per-section image files
// attached separately.
type PartForm struct {
	StoryID        string
	PartID         string
	AgeVariant     models.AgeVariant
	Languages      []models.Language
	Title          models.LangMap
	Date           models.LangMap
	Description    models.LangMap
	TimeToRead     models.LangMap
	StoryType      models.LangMap
	Thumbnail      *multipart.FileHeader
	ThumbnailURL   string
	Sections       []SectionForm
	ConfirmCascade bool
}

// Validate checks the language list against the owning story and requires
// every metadata field, plus a heading and text on every section, per active
// language. Section quotes stay optional.
func (f PartForm) Validate(story models.Story) error {
	if err := validateLanguages(f.Languages); err != nil {
		return err
	}

	for _, lang := range f.Languages {
		if !story.HasLanguage(lang) {
			return fmt.Errorf("language %q is not enabled on the story", lang)
		}
	}

	if !models.IsValidAgeVariant(f.AgeVariant) {
		return fmt.Errorf("unknown age variant %q", f.AgeVariant)
	}

	required := map[string]models.LangMap{
		"title":       f.Title,
		"date":        f.Date,
		"description": f.Description,
		"timeToRead":  f.TimeToRead,
		"storyType":   f.StoryType,
	}
	for field, m := range required {
		for _, lang := range f.Languages {
			if m.Get(lang) == "" {
				return fmt.Errorf("%s is required for language %q", field, lang)
			}
		}
	}

	for i, section := range f.Sections {
		for _, lang := range f.Languages {
			if section.Heading.Get(lang) == "" {
				return fmt.Errorf("section %d heading is required for language %q", i+1, lang)
			}
			if section.Text.Get(lang) == "" {
				return fmt.Errorf("section %d text is required for language %q", i+1, lang)
			}
		}
	}

	return nil
}

// RemovedLanguages compares against the stored part's languages, falling back
// to the languages its title is populated in when the backend omits the list.
func (f PartForm) RemovedLanguages(current models.Part) []models.Language {
	langs := current.Languages
	if len(langs) == 0 {
		langs = current.Title.PopulatedLanguages()
	}
	return removedLanguages(langs, f.Languages)
}

// Submission converts the form to the backend submission, opening uploaded
// files. The returned closer must be called after the request is sent.
func (f PartForm) Submission(removed []models.Language) (storyapi.PartSubmission, func(), error) {
	sub := storyapi.PartSubmission{
		StoryID:      f.StoryID,
		PartID:       f.PartID,
		AgeVariant:   f.AgeVariant,
		Languages:    f.Languages,
		Title:        f.Title,
		Date:         f.Date,
		Description:  f.Description,
		TimeToRead:   f.TimeToRead,
		StoryType:    f.StoryType,
		ThumbnailURL: f.ThumbnailURL,
	}

	if len(removed) > 0 {
		sub.RemoveLanguages = removed
		sub.DeleteContent = true
	}

	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	thumb, closeThumb, err := openUpload(f.Thumbnail)
	if err != nil {
		return storyapi.PartSubmission{}, closeAll, err
	}
	if closeThumb != nil {
		closers = append(closers, closeThumb)
	}
	sub.Thumbnail = thumb

	for _, section := range f.Sections {
		out := storyapi.SectionSubmission{
			Heading:  section.Heading,
			Quote:    section.Quote,
			Text:     section.Text,
			ImageURL: section.ImageURL,
		}

		image, closeImage, err := openUpload(section.Image)
		if err != nil {
			closeAll()
			return storyapi.PartSubmission{}, func() {}, err
		}
		if closeImage != nil {
			closers = append(closers, closeImage)
		}
		out.Image = image

		sub.Sections = append(sub.Sections, out)
	}

	return sub, closeAll, nil
}
