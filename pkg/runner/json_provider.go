package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONProvider speaks JSON lines: each request is written as one line and one
// InteractionResponse line is read back. A response without a session id is
// correlated with the pending request.
type JSONProvider struct {
	mu      sync.Mutex
	encoder *jsoniter.Encoder
	decoder *jsoniter.Decoder
}

// NewJSONProvider creates a JSON lines provider.
func NewJSONProvider(r io.Reader, w io.Writer) *JSONProvider {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONProvider{
		encoder: json.NewEncoder(w),
		decoder: json.NewDecoder(bufio.NewReader(r)),
	}
}

func (p *JSONProvider) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.InteractionResponse{}, err
	}
	if err := p.encoder.Encode(req); err != nil {
		return domain.InteractionResponse{}, fmt.Errorf("write request: %w", err)
	}

	var resp domain.InteractionResponse
	if err := p.decoder.Decode(&resp); err != nil {
		if err == io.EOF {
			return domain.InteractionResponse{}, io.EOF
		}
		return domain.InteractionResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.SessionID == "" {
		resp.SessionID = req.SessionID
	}
	if resp.SessionID != req.SessionID {
		return domain.InteractionResponse{}, fmt.Errorf("response for session %s does not match request %s", resp.SessionID, req.SessionID)
	}
	return resp, nil
}
