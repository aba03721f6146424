package aiwebhook

import (
	"encoding/json"
	"errors"

	"storyadmin/internal/domain/models"
)

var (
	// ErrUnrecognizedResponse means the webhook payload matched neither of
	// the two known shapes.
	ErrUnrecognizedResponse = errors.New("unrecognized webhook response shape")
	// ErrNoSections means the shape was recognized but held no usable
	// section payloads.
	ErrNoSections = errors.New("no valid sections in webhook response")
)

// wrapper is one element of the webhook response. The real section payload
// sits in a nested single-element array.
type wrapper struct {
	Output []sectionPayload `json:"output"`
}

type sectionPayload struct {
	SectionNumber int            `json:"sectionNumber"`
	Heading       models.LangMap `json:"heading"`
	Quote         models.LangMap `json:"quote"`
	SectionText   models.LangMap `json:"sectionText"`
	OneLineText   models.LangMap `json:"oneLineText"`
	ImageURL      string         `json:"imageUrl"`
	FileName      string         `json:"fileName"`
	ImagePrompt   string         `json:"imagePrompt"`
	Prompt        string         `json:"prompt"`
}

// parseResponse attempts the two known response shapes in order: a bare array
// of wrappers, then an object with a "data" array. Anything else is
// unrecognized; there is no further duck-typed sniffing.
func parseResponse(raw []byte) ([]wrapper, error) {
	// a JSON null decodes into a nil slice; that is not a recognized shape
	var bare []wrapper
	if err := json.Unmarshal(raw, &bare); err == nil && bare != nil {
		return bare, nil
	}

	var enveloped struct {
		Data []wrapper `json:"data"`
	}
	if err := json.Unmarshal(raw, &enveloped); err == nil && enveloped.Data != nil {
		return enveloped.Data, nil
	}

	return nil, ErrUnrecognizedResponse
}

// Normalize converts a raw webhook response into the fixed section schema.
// Section numbers come out 1-based and contiguous regardless of what the
// upstream sent.
func Normalize(raw []byte) ([]models.GeneratedSection, error) {
	wrappers, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	var sections []models.GeneratedSection
	for _, w := range wrappers {
		if len(w.Output) == 0 {
			continue
		}

		payload := w.Output[0]
		sections = append(sections, models.GeneratedSection{
			SectionNumber: payload.SectionNumber,
			Heading:       orEmptyLangMap(payload.Heading),
			Quote:         orEmptyLangMap(payload.Quote),
			SectionText:   orEmptyLangMap(payload.SectionText),
			OneLineText:   orEmptyLangMap(payload.OneLineText),
			ImageGen:      imageReference(payload),
		})
	}

	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	return models.RenumberSections(sections), nil
}

func orEmptyLangMap(m models.LangMap) models.LangMap {
	if m != nil {
		return m
	}

	out := make(models.LangMap, len(models.SupportedLanguages()))
	for _, lang := range models.SupportedLanguages() {
		out[lang] = ""
	}

	return out
}

// imageReference picks the image source by fixed priority: explicit URL,
// file name, image prompt, generic prompt.
func imageReference(p sectionPayload) string {
	switch {
	case p.ImageURL != "":
		return p.ImageURL
	case p.FileName != "":
		return p.FileName
	case p.ImagePrompt != "":
		return p.ImagePrompt
	case p.Prompt != "":
		return p.Prompt
	}
	return ""
}
