package storyapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"storyadmin/internal/domain/models"
)

// FileUpload is a file forwarded from the admin form to the backend.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// StorySubmission is the statically shaped input of the story create/update
// forms. Wire field names exist only in the encoder below.
type StorySubmission struct {
	Name            models.LangMap
	Languages       []models.Language
	RemoveLanguages []models.Language
	DeleteContent   bool
	CoverImage      *FileUpload
	CoverImageURL   string
	BannerImage     *FileUpload
	BannerImageURL  string
}

type SectionSubmission struct {
	Heading  models.LangMap
	Quote    models.LangMap
	Text     models.LangMap
	Image    *FileUpload
	ImageURL string
}

// PartSubmission covers both create and update; the backend disambiguates by
// the presence of partId.
type PartSubmission struct {
	StoryID         string
	PartID          string
	AgeVariant      models.AgeVariant
	Languages       []models.Language
	RemoveLanguages []models.Language
	DeleteContent   bool
	Title           models.LangMap
	Date            models.LangMap
	Description     models.LangMap
	TimeToRead      models.LangMap
	StoryType       models.LangMap
	Thumbnail       *FileUpload
	ThumbnailURL    string
	Sections        []SectionSubmission
}

// langSuffix capitalizes a language code for the per-language field naming
// convention: titleEn, titleTe, titleHi.
func langSuffix(lang models.Language) string {
	s := string(lang)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeLangFields(w *multipart.Writer, base string, m models.LangMap) error {
	for _, lang := range models.SupportedLanguages() {
		if v := m.Get(lang); v != "" {
			if err := w.WriteField(base+langSuffix(lang), v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeLanguagesField(w *multipart.Writer, name string, langs []models.Language) error {
	if len(langs) == 0 {
		return nil
	}

	data, err := json.Marshal(langs)
	if err != nil {
		return err
	}

	return w.WriteField(name, string(data))
}

func writeFile(w *multipart.Writer, field string, upload *FileUpload) error {
	fw, err := w.CreateFormFile(field, upload.Filename)
	if err != nil {
		return err
	}

	_, err = io.Copy(fw, upload.Content)
	return err
}

// encodeStoryForm writes a story submission in the backend's multipart wire
// format.
func encodeStoryForm(w *multipart.Writer, sub StorySubmission) error {
	if err := writeLangFields(w, "name", sub.Name); err != nil {
		return err
	}

	if err := writeLanguagesField(w, "languages", sub.Languages); err != nil {
		return err
	}

	if len(sub.RemoveLanguages) > 0 {
		if err := writeLanguagesField(w, "removeLanguages", sub.RemoveLanguages); err != nil {
			return err
		}
	}

	if sub.DeleteContent {
		if err := w.WriteField("deleteContent", "true"); err != nil {
			return err
		}
	}

	switch {
	case sub.CoverImage != nil:
		if err := writeFile(w, "storyCoverImage", sub.CoverImage); err != nil {
			return err
		}
	case sub.CoverImageURL != "":
		if err := w.WriteField("storyCoverImage", sub.CoverImageURL); err != nil {
			return err
		}
	}

	switch {
	case sub.BannerImage != nil:
		if err := writeFile(w, "bannerImage", sub.BannerImage); err != nil {
			return err
		}
	case sub.BannerImageURL != "":
		if err := w.WriteField("bannerImage", sub.BannerImageURL); err != nil {
			return err
		}
	}

	return nil
}

// encodePartForm writes a part submission. Per-section fields carry a
// zero-based index suffix: headingEn0, headingEn1, ...
func encodePartForm(w *multipart.Writer, sub PartSubmission) error {
	if err := w.WriteField("storyId", sub.StoryID); err != nil {
		return err
	}

	if sub.PartID != "" {
		if err := w.WriteField("partId", sub.PartID); err != nil {
			return err
		}
	}

	if sub.AgeVariant != models.VariantDefault {
		if err := w.WriteField("ageVariant", string(sub.AgeVariant)); err != nil {
			return err
		}
	}

	for base, m := range map[string]models.LangMap{
		"title":       sub.Title,
		"date":        sub.Date,
		"description": sub.Description,
		"timeToRead":  sub.TimeToRead,
		"storyType":   sub.StoryType,
	} {
		if err := writeLangFields(w, base, m); err != nil {
			return err
		}
	}

	if err := writeLanguagesField(w, "languages", sub.Languages); err != nil {
		return err
	}

	if len(sub.RemoveLanguages) > 0 {
		if err := writeLanguagesField(w, "removeLanguages", sub.RemoveLanguages); err != nil {
			return err
		}
	}

	if sub.DeleteContent {
		if err := w.WriteField("deleteContent", "true"); err != nil {
			return err
		}
	}

	switch {
	case sub.Thumbnail != nil:
		if err := writeFile(w, "thumbnailImage", sub.Thumbnail); err != nil {
			return err
		}
	case sub.ThumbnailURL != "":
		if err := w.WriteField("thumbnailImage", sub.ThumbnailURL); err != nil {
			return err
		}
	}

	for i, section := range sub.Sections {
		for base, m := range map[string]models.LangMap{
			"heading": section.Heading,
			"quote":   section.Quote,
			"text":    section.Text,
		} {
			for _, lang := range models.SupportedLanguages() {
				if v := m.Get(lang); v != "" {
					field := fmt.Sprintf("%s%s%d", base, langSuffix(lang), i)
					if err := w.WriteField(field, v); err != nil {
						return err
					}
				}
			}
		}

		switch {
		case section.Image != nil:
			if err := writeFile(w, fmt.Sprintf("sectionImage%d", i), section.Image); err != nil {
				return err
			}
		case section.ImageURL != "":
			if err := w.WriteField(fmt.Sprintf("sectionImage%d", i), section.ImageURL); err != nil {
				return err
			}
		}
	}

	return nil
}
