package llm

import (
	"context"
	"encoding/json"
)

// Client abstracts the structured-extraction service that converts resume
// text into the normalized JSON record.
type Client interface {
	ParseResume(ctx context.Context, resumeText string) (json.RawMessage, error)
}
