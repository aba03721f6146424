package dto

// GenerateRequest asks the authoring assistant for sections. Resolution is
// empty on a first attempt; when a previous attempt answered
// needs_confirmation it carries save_draft or discard.
type GenerateRequest struct {
	Prompt     string `json:"prompt" validate:"required"`
	SourceText string `json:"sourceText,omitempty"`
	Resolution string `json:"resolution,omitempty" validate:"omitempty,oneof=save_draft discard"`
}

// GenerateResponse mirrors the gate outcome. Sections are present only when
// status is ok.
type GenerateResponse struct {
	Status   string      `json:"status"`
	Source   string      `json:"source,omitempty"`
	Sections interface{} `json:"sections,omitempty"`
	Warning  string      `json:"warning,omitempty"`
}
