// Package codec serializes Decisions, States and SessionContexts to JSON.
//
// Decisions are polymorphic, so they travel inside an Envelope tagged with their
// Kind. Decoding looks the kind up in an explicit registry; there is no reflection
// over type names.
package codec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
	jsoniter "github.com/json-iterator/go"
)

// json sorts map keys so persisted snapshots are byte-stable.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrUnknownKind is returned when decoding an envelope whose kind was never registered.
	ErrUnknownKind = errors.New("unknown decision kind")
	// ErrDuplicateKind is returned when a kind is registered twice.
	ErrDuplicateKind = errors.New("decision kind already registered")
)

// Envelope wraps an encoded Decision with its discriminant.
type Envelope struct {
	Kind    domain.DecisionKind `json:"kind"`
	Payload jsoniter.RawMessage `json:"payload"`
}

type decodeFunc func([]byte) (domain.Decision, error)

// Codec encodes and decodes Decisions for persistence.
type Codec struct {
	mu       sync.RWMutex
	decoders map[domain.DecisionKind]decodeFunc
}

// New creates an empty codec. Use Default for one that knows the built-in decisions.
func New() *Codec {
	return &Codec{decoders: make(map[domain.DecisionKind]decodeFunc)}
}

// Default returns a codec with every built-in Decision variant registered.
func Default() *Codec {
	c := New()
	MustRegister[domain.InitializeBoard](c)
	MustRegister[domain.SpawnEntity](c)
	MustRegister[domain.RemoveEntity](c)
	MustRegister[domain.UpdateComponents](c)
	MustRegister[domain.AdjustStat](c)
	MustRegister[domain.MoveEntity](c)
	MustRegister[domain.SetPhase](c)
	return c
}

// Register teaches the codec how to decode the Decision variant D.
// D must be a value type whose Kind does not depend on its fields.
func Register[D domain.Decision](c *Codec) error {
	var zero D
	kind := zero.Kind()
	return c.register(kind, func(data []byte) (domain.Decision, error) {
		var d D
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		return d, nil
	})
}

// MustRegister is like Register but panics on error.
func MustRegister[D domain.Decision](c *Codec) {
	if err := Register[D](c); err != nil {
		panic(err)
	}
}

func (c *Codec) register(kind domain.DecisionKind, fn decodeFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.decoders[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	c.decoders[kind] = fn
	return nil
}

// Knows reports whether a kind can be decoded.
func (c *Codec) Knows(kind domain.DecisionKind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.decoders[kind]
	return ok
}

// Wrap encodes a Decision into an Envelope.
func (c *Codec) Wrap(d domain.Decision) (Envelope, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", d.Kind(), err)
	}
	return Envelope{Kind: d.Kind(), Payload: payload}, nil
}

// Unwrap decodes an Envelope back into its concrete Decision.
func (c *Codec) Unwrap(env Envelope) (domain.Decision, error) {
	c.mu.RLock()
	fn, ok := c.decoders[env.Kind]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	return fn(env.Payload)
}

// EncodeDecision returns the JSON envelope of a Decision.
func (c *Codec) EncodeDecision(d domain.Decision) ([]byte, error) {
	env, err := c.Wrap(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// DecodeDecision parses a JSON envelope.
func (c *Codec) DecodeDecision(data []byte) (domain.Decision, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return c.Unwrap(env)
}
