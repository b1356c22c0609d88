package utils

// HandlerError is an error returned from a rest route handler or a
// middleware.
type HandlerError struct {
	Code          int
	Message       string
	ClientMessage string
}

func (hErr *HandlerError) Error() string {
	return hErr.Message
}

// NewHandlerError returns a HandlerError with the given code and message.
func NewHandlerError(code int, message string) *HandlerError {
	return &HandlerError{
		Code:          code,
		Message:       message,
		ClientMessage: message,
	}
}

// NewInternalServerHandlerError returns a HandlerError with the given message
// and a client message hiding internal detail.
func NewInternalServerHandlerError(message string) *HandlerError {
	return &HandlerError{
		Code:          500,
		Message:       message,
		ClientMessage: "An internal server error occurred",
	}
}
