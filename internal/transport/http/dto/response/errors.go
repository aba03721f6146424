package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrSessionRequired = ErrorResponse{
		Status:  "error",
		Error:   "session_required",
		Details: "Log in before calling this endpoint",
	}

	ErrStoryNotFound = ErrorResponse{
		Status:  "error",
		Error:   "story_not_found",
		Details: "Story does not exist on the backend",
	}

	ErrDraftNotFound = ErrorResponse{
		Status:  "error",
		Error:   "draft_not_found",
		Details: "Draft does not exist or was purged",
	}
)

// CascadeConfirmation is the 409 payload sent when a save would delete
// per-language content the caller has not confirmed yet.
type CascadeConfirmation struct {
	Status           string   `json:"status"`
	Error            string   `json:"error"`
	RemovedLanguages []string `json:"removed_languages"`
	Details          string   `json:"details"`
}

func NewCascadeConfirmation(removed []string) CascadeConfirmation {
	return CascadeConfirmation{
		Status:           "needs_confirmation",
		Error:            "cascade_delete",
		RemovedLanguages: removed,
		Details:          "Saving will permanently delete content in the removed languages. Repeat the request with confirmCascade=true to proceed.",
	}
}
