package response

import "portfolio_gallery/internal/domain/models"

// Response конверт всех ответов API: {success, data}.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorData тело data для неуспешного ответа.
type ErrorData struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func Fail(code, message string) Response {
	return Response{
		Success: false,
		Data:    ErrorData{Message: message, Error: code},
	}
}

const (
	CodeInvalidRequest = "invalid_request"
	CodeForbidden      = "forbidden"
	CodeUnauthorized   = "authentication_failed"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeInternal       = "internal_error"
)

var (
	ErrInvalidRequestFormat = Fail(CodeInvalidRequest, "Invalid request format")
	ErrAuthenticationFailed = Fail(CodeUnauthorized, "Invalid username or password")
	ErrLoginRequired        = Fail(CodeForbidden, "You must be logged in")
	ErrInvalidNonce         = Fail(CodeForbidden, "Security check failed")
	ErrPermissionDenied     = Fail(CodeForbidden, "You do not have permission to do this")
	ErrInternal             = Fail(CodeInternal, "Internal server error")
)

type Login struct {
	User string `json:"user"`
	Role string `json:"role"`
}

type Nonce struct {
	Action string `json:"action"`
	Nonce  string `json:"nonce"`
}

type GalleryList struct {
	Galleries []models.GalleryRecord `json:"galleries"`
	Total     int                    `json:"total"`
	Page      int                    `json:"page"`
	PerPage   int                    `json:"per_page"`
}

// Gallery запись галереи вместе с настройками и изображениями.
type Gallery struct {
	Gallery  models.GalleryRecord `json:"gallery"`
	Settings map[string]any       `json:"settings"`
	Images   []models.Image       `json:"images"`
}

type Images struct {
	Count  int            `json:"count"`
	Images []models.Image `json:"images"`
}

// ChunkStatus состояние незавершённого порционного сохранения.
type ChunkStatus struct {
	InProgress bool `json:"in_progress"`
	Pending    int  `json:"pending"`
}

type BatchResult struct {
	Migrated int    `json:"migrated"`
	Message  string `json:"message"`
}

type Health struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
