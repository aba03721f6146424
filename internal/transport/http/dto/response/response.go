package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

// Notice is a transient success banner; the client hides it after
// DismissAfterMS.
type Notice struct {
	Message        string `json:"message"`
	DismissAfterMS int    `json:"dismiss_after_ms"`
}

const (
	// banner duration for entity creation
	NoticeCreateMS = 2000
	// shorter banner for in-place updates
	NoticeUpdateMS = 1500
)

func CreatedNotice(message string) Notice {
	return Notice{Message: message, DismissAfterMS: NoticeCreateMS}
}

func UpdatedNotice(message string) Notice {
	return Notice{Message: message, DismissAfterMS: NoticeUpdateMS}
}
