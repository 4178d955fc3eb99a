// Package llm contains the LLM-backed decision pipeline: the gateway
// boundary, the prompt builder, response parsing, and the per-hand
// action memory.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Gateway is the consumed completion boundary. Implementations handle
// transport, auth and per-request timeouts; callers see only the two
// completion modes.
type Gateway interface {
	// CompleteStructured requests a schema-constrained completion and
	// returns the raw JSON object. Models without structured-output
	// support return ErrStructuredUnsupported.
	CompleteStructured(ctx context.Context, model, system, prompt string, schema json.RawMessage) (json.RawMessage, error)

	// CompleteText requests a free-form completion.
	CompleteText(ctx context.Context, model, system, prompt string) (string, error)
}

// ErrStructuredUnsupported reports that the model cannot honor a
// response schema; the pipeline downgrades to text mode.
var ErrStructuredUnsupported = errors.New("structured output not supported by model")
