package domain

// InteractionType discriminates what kind of input the host must collect.
type InteractionType string

const (
	InteractionDiceRoll InteractionType = "DiceRoll"
	InteractionChoice   InteractionType = "Choice"
	InteractionConfirm  InteractionType = "Confirm"
)

// InteractionRequest is handed to the external input provider when a pipeline suspends.
type InteractionRequest struct {
	SessionID string            `json:"session_id"`
	Type      InteractionType   `json:"type"`
	Prompt    string            `json:"prompt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DefaultVariable is the session variable an answer is stored under when the
// request names none.
const DefaultVariable = "value"

// Variable returns the session variable the answer is stored under.
func (r InteractionRequest) Variable() string {
	if v := r.Meta(MetaVariable); v != "" {
		return v
	}
	return DefaultVariable
}

// Meta returns a metadata value.
func (r InteractionRequest) Meta(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// InteractionResponse correlates with a request by SessionID and carries either
// input data or a cancellation flag.
type InteractionResponse struct {
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
	Cancelled bool           `json:"cancelled,omitempty"`
}
