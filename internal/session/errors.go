package session

import "errors"

var (
	// ErrNoSession indicates the owner has no active capture session.
	ErrNoSession = errors.New("no active session for owner")
	// ErrSessionExists indicates the owner already has an active session.
	ErrSessionExists = errors.New("owner already has an active session")
	// ErrWrongStage indicates the operation is not valid in the session's
	// current stage.
	ErrWrongStage = errors.New("operation not valid in current stage")
	// ErrProcessing indicates an image batch is still being processed.
	ErrProcessing = errors.New("image batch still processing")
	// ErrBatchTooLarge indicates the submitted batch exceeds the configured
	// per-batch image limit.
	ErrBatchTooLarge = errors.New("image batch exceeds configured limit")
	// ErrEmptyBatch indicates SubmitImages was called with no images.
	ErrEmptyBatch = errors.New("image batch is empty")
	// ErrNoImages indicates the session has no recorded observations yet.
	ErrNoImages = errors.New("no images processed yet")
)
