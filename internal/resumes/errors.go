package resumes

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtraction covers documents that cannot be parsed or contain no text.
	ErrExtraction = errors.New("document could not be read")
	// ErrUpstream covers extraction-service transport failures and responses
	// that do not match the expected schema.
	ErrUpstream = errors.New("resume extraction service failed")
	// ErrBlob covers a failed upload of the new blob. Failed deletes of old
	// blobs are logged, never surfaced.
	ErrBlob = errors.New("blob storage failed")
	// ErrPersistence covers transaction failures; the previous resume graph
	// is preserved by rollback.
	ErrPersistence = errors.New("resume persistence failed")
)

const (
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeExtraction  = "EXTRACTION_FAILED"
	ErrorCodeUpstream    = "EXTRACTOR_UNAVAILABLE"
	ErrorCodeBlob        = "STORAGE_ERROR"
	ErrorCodePersistence = "INTERNAL_ERROR"
	ErrorCodeNotFound    = "NOT_FOUND"
)
