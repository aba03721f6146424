package storyapi

import (
	"bytes"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"storyadmin/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeToValues(t *testing.T, encode func(w *multipart.Writer) error) (map[string][]string, map[string][]string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, encode(w))
	require.NoError(t, w.Close())

	_, params, err := mime.ParseMediaType("multipart/form-data; boundary=" + w.Boundary())
	require.NoError(t, err)

	reader := multipart.NewReader(&buf, params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)

	files := make(map[string][]string)
	for field, headers := range form.File {
		for _, h := range headers {
			files[field] = append(files[field], h.Filename)
		}
	}

	return form.Value, files
}

func TestEncodeStoryForm_FieldNaming(t *testing.T) {
	sub := StorySubmission{
		Name: models.LangMap{
			models.LangEnglish: "The Fox",
			models.LangTelugu:  "నక్క",
		},
		Languages:      []models.Language{models.LangEnglish, models.LangTelugu},
		CoverImage:     &FileUpload{Filename: "cover.png", Content: strings.NewReader("png-bytes")},
		BannerImageURL: "https://cdn.example.com/banner.png",
	}

	values, files := encodeToValues(t, func(w *multipart.Writer) error {
		return encodeStoryForm(w, sub)
	})

	assert.Equal(t, []string{"The Fox"}, values["nameEn"])
	assert.Equal(t, []string{"నక్క"}, values["nameTe"])
	assert.NotContains(t, values, "nameHi")
	assert.Equal(t, []string{`["en","te"]`}, values["languages"])
	assert.NotContains(t, values, "removeLanguages")
	assert.NotContains(t, values, "deleteContent")

	assert.Equal(t, []string{"cover.png"}, files["storyCoverImage"])
	assert.Equal(t, []string{"https://cdn.example.com/banner.png"}, values["bannerImage"])
}

func TestEncodeStoryForm_LanguageRemovalCascade(t *testing.T) {
	sub := StorySubmission{
		Name:            models.LangMap{models.LangEnglish: "The Fox"},
		Languages:       []models.Language{models.LangEnglish},
		RemoveLanguages: []models.Language{models.LangTelugu},
		DeleteContent:   true,
	}

	values, _ := encodeToValues(t, func(w *multipart.Writer) error {
		return encodeStoryForm(w, sub)
	})

	assert.Equal(t, []string{`["te"]`}, values["removeLanguages"])
	assert.Equal(t, []string{"true"}, values["deleteContent"])
}

func TestEncodePartForm_SectionIndexing(t *testing.T) {
	sub := PartSubmission{
		StoryID:   "story-1",
		PartID:    "part-9",
		Languages: []models.Language{models.LangEnglish},
		Title:     models.LangMap{models.LangEnglish: "Part One"},
		Date:      models.LangMap{models.LangEnglish: "2026-01-01"},
		Sections: []SectionSubmission{
			{
				Heading: models.LangMap{models.LangEnglish: "Morning"},
				Text:    models.LangMap{models.LangEnglish: "Once upon a time"},
			},
			{
				Heading: models.LangMap{models.LangEnglish: "Evening"},
				Quote:   models.LangMap{models.LangEnglish: "Good night"},
				Image:   &FileUpload{Filename: "sunset.jpg", Content: strings.NewReader("jpg")},
			},
		},
	}

	values, files := encodeToValues(t, func(w *multipart.Writer) error {
		return encodePartForm(w, sub)
	})

	assert.Equal(t, []string{"story-1"}, values["storyId"])
	assert.Equal(t, []string{"part-9"}, values["partId"])
	assert.Equal(t, []string{"Part One"}, values["titleEn"])

	assert.Equal(t, []string{"Morning"}, values["headingEn0"])
	assert.Equal(t, []string{"Once upon a time"}, values["textEn0"])
	assert.Equal(t, []string{"Evening"}, values["headingEn1"])
	assert.Equal(t, []string{"Good night"}, values["quoteEn1"])
	assert.NotContains(t, values, "quoteEn0")

	assert.Equal(t, []string{"sunset.jpg"}, files["sectionImage1"])
}

func TestEncodePartForm_CreateOmitsPartID(t *testing.T) {
	sub := PartSubmission{
		StoryID:    "story-1",
		AgeVariant: models.VariantToddler,
		Languages:  []models.Language{models.LangEnglish},
	}

	values, _ := encodeToValues(t, func(w *multipart.Writer) error {
		return encodePartForm(w, sub)
	})

	assert.NotContains(t, values, "partId")
	assert.Equal(t, []string{"toddler"}, values["ageVariant"])
}

func TestLangSuffix(t *testing.T) {
	assert.Equal(t, "En", langSuffix(models.LangEnglish))
	assert.Equal(t, "Te", langSuffix(models.LangTelugu))
	assert.Equal(t, "Hi", langSuffix(models.LangHindi))
}
