package codec

import (
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
)

type pendingRecord struct {
	Seq      uint64   `json:"seq"`
	Decision Envelope `json:"decision"`
}

type stateRecord struct {
	Version  uint64            `json:"version"`
	Board    domain.Board      `json:"board"`
	Entities domain.EntityMap  `json:"entities"`
	Metadata map[string]string `json:"metadata,omitempty"`
	PhaseID  string            `json:"phase_id"`
	Pending  []pendingRecord   `json:"pending,omitempty"`
	NextSeq  uint64            `json:"next_seq"`
}

// EncodeState serializes a State, including its pending decision queue.
func (c *Codec) EncodeState(s domain.State) ([]byte, error) {
	rec := stateRecord{
		Version:  s.Version,
		Board:    s.Board,
		Entities: s.Entities,
		Metadata: s.Metadata,
		PhaseID:  s.PhaseID,
		NextSeq:  s.Pending.NextSeq(),
	}
	for _, e := range s.Pending.Entries() {
		env, err := c.Wrap(e.Decision)
		if err != nil {
			return nil, fmt.Errorf("pending #%d: %w", e.Seq, err)
		}
		rec.Pending = append(rec.Pending, pendingRecord{Seq: e.Seq, Decision: env})
	}
	return json.MarshalIndent(rec, "", "  ")
}

// DecodeState parses data produced by EncodeState.
func (c *Codec) DecodeState(data []byte) (domain.State, error) {
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.State{}, fmt.Errorf("decode state: %w", err)
	}

	entries := make([]domain.Scheduled, 0, len(rec.Pending))
	for _, p := range rec.Pending {
		d, err := c.Unwrap(p.Decision)
		if err != nil {
			return domain.State{}, fmt.Errorf("pending #%d: %w", p.Seq, err)
		}
		entries = append(entries, domain.Scheduled{Seq: p.Seq, Decision: d})
	}

	s := domain.NewState(rec.PhaseID)
	s.Version = rec.Version
	s.Board = rec.Board
	if rec.Entities.Len() > 0 {
		s.Entities = rec.Entities
	}
	if rec.Metadata != nil {
		s.Metadata = rec.Metadata
	}
	s.Pending = domain.RestoreScheduler(entries, rec.NextSeq)
	return s, nil
}

// EncodeSession serializes a SessionContext. The snapshot is not included.
func EncodeSession(s *domain.SessionContext) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSession parses data produced by EncodeSession.
// Numeric variables come back as float64; use SessionContext.Int to read them.
func DecodeSession(data []byte) (*domain.SessionContext, error) {
	var s domain.SessionContext
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Variables == nil {
		s.Variables = make(map[string]any)
	}
	return &s, nil
}
