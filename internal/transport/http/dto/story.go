package dto

import (
	"fmt"
	"mime/multipart"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/storyapi"
)

// StoryForm is the parsed story create/update form. Image fields carry either
// an uploaded file or a URL kept from the existing entity.
type StoryForm struct {
	Name           models.LangMap
	Languages      []models.Language
	CoverImage     *multipart.FileHeader
	CoverImageURL  string
	BannerImage    *multipart.FileHeader
	BannerImageURL string
	ConfirmCascade bool
}

// Validate checks the language list, requires a name for every active
// language and requires both images in either file or URL form.
func (f StoryForm) Validate() error {
	if err := validateLanguages(f.Languages); err != nil {
		return err
	}

	for _, lang := range f.Languages {
		if f.Name.Get(lang) == "" {
			return fmt.Errorf("name is required for language %q", lang)
		}
	}

	if f.CoverImage == nil && f.CoverImageURL == "" {
		return fmt.Errorf("cover image is required")
	}
	if f.BannerImage == nil && f.BannerImageURL == "" {
		return fmt.Errorf("banner image is required")
	}

	return nil
}

// RemovedLanguages returns the languages present on the stored entity but
// absent from the form. A non-empty result means saving would cascade-delete
// content.
func (f StoryForm) RemovedLanguages(current models.Story) []models.Language {
	return removedLanguages(current.Languages, f.Languages)
}

// Submission converts the form to the backend submission, opening any
// uploaded files. The returned closer must be called after the request is
// sent.
func (f StoryForm) Submission(removed []models.Language) (storyapi.StorySubmission, func(), error) {
	sub := storyapi.StorySubmission{
		Name:           f.Name,
		Languages:      f.Languages,
		CoverImageURL:  f.CoverImageURL,
		BannerImageURL: f.BannerImageURL,
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

	cover, closeCover, err := openUpload(f.CoverImage)
	if err != nil {
		return storyapi.StorySubmission{}, closeAll, err
	}
	if closeCover != nil {
		closers = append(closers, closeCover)
	}
	sub.CoverImage = cover

	banner, closeBanner, err := openUpload(f.BannerImage)
	if err != nil {
		closeAll()
		return storyapi.StorySubmission{}, func() {}, err
	}
	if closeBanner != nil {
		closers = append(closers, closeBanner)
	}
	sub.BannerImage = banner

	return sub, closeAll, nil
}

func validateLanguages(langs []models.Language) error {
	if len(langs) == 0 {
		return fmt.Errorf("at least one language is required")
	}

	for _, lang := range langs {
		if !models.IsSupportedLanguage(lang) {
			return fmt.Errorf("unsupported language %q", lang)
		}
	}

	return nil
}

func removedLanguages(current, submitted []models.Language) []models.Language {
	keep := make(map[models.Language]bool, len(submitted))
	for _, lang := range submitted {
		keep[lang] = true
	}

	var removed []models.Language
	for _, lang := range current {
		if !keep[lang] {
			removed = append(removed, lang)
		}
	}

	return removed
}

func openUpload(fh *multipart.FileHeader) (*storyapi.FileUpload, func(), error) {
	if fh == nil {
		return nil, nil, nil
	}

	file, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open uploaded file %q: %w", fh.Filename, err)
	}

	return &storyapi.FileUpload{
		Filename: fh.Filename,
		Content:  file,
	}, func() { file.Close() }, nil
}
