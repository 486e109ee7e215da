package domain

import "errors"

var (
	ErrMalformedPayload = errors.New("malformed frame payload")
	ErrActionInvalid    = errors.New("action rejected by hub")
	ErrOriginMismatch   = errors.New("frame url does not match deployment host")
	ErrInternal         = errors.New("internal server error")
)
