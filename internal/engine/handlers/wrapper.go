package handlers

import (
	"fmt"

	"keeper-server/pkg/api"
)

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовым сообщением T
type TypedHandlerFunc[T api.Message] func(ctx Context, payload T) (Result, error)

// WithPayload берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Она берет на себя приведение типа и Validate.
func WithPayload[T api.Message](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, msg api.Message) (Result, error) {
		payload, ok := msg.(T)
		if !ok {
			return Result{}, fmt.Errorf("unexpected payload %s", msg.Type())
		}

		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("validation failed: %w", err)
			}
		}

		return handler(ctx, payload)
	}
}
