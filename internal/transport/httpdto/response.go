package httpdto

import chat_errors "chat-service/pkg/errors"

// Response is the envelope of every JSON reply. Code carries the error kind.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code chat_errors.Kind) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    string(code),
	}
}

// FromError renders err with its kind and client-safe message.
func FromError(err error) Response[any] {
	return NewErrorResponse(chat_errors.PublicMessage(err), chat_errors.KindOf(err))
}
