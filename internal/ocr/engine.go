package ocr

import "context"

// Engine is the contract for the external text-recognition resource. The
// engine is slow and not safely reentrant; callers must hold an admission
// lease before invoking Recognize and must never run two calls concurrently.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// EngineFunc adapts a plain function to the Engine interface (used in tests).
type EngineFunc func(ctx context.Context, image []byte) (string, error)

func (f EngineFunc) Name() string { return "func" }

func (f EngineFunc) Recognize(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}
