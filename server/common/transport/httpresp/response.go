package httpresp

// Error messages clients match on. The two auth messages are load-bearing:
// the web client decides "must re-login" by recognizing them.
const (
	ErrNoToken            = "No token provided"
	ErrInvalidToken       = "Invalid token"
	ErrInvalidCredentials = "Invalid email or password"
	ErrEmailExists        = "Email already exists"
	ErrProjectNotFound    = "Project not found"
	ErrServerError        = "Internal server error"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeServerError  = "SERVER_ERROR"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message, code string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}

func Validation(message string) ErrorResponse {
	return NewErrorResponse(message, CodeValidation)
}

func Unauthorized(message string) ErrorResponse {
	return NewErrorResponse(message, CodeUnauthorized)
}

func NotFound(message string) ErrorResponse {
	return NewErrorResponse(message, CodeNotFound)
}

func Conflict(message string) ErrorResponse {
	return NewErrorResponse(message, CodeConflict)
}

func ServerError() ErrorResponse {
	return NewErrorResponse(ErrServerError, CodeServerError)
}
