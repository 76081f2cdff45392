package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "ssn"})
	require.NoError(t, err)
	view := mw(underlying)

	sc := newSession("pii")
	sc.Set("username", "jdoe")
	sc.Set("user_password", "secret123")
	sc.Set("details", map[string]any{"address": "123 St", "ssn_number": "999-99-9999"})
	sc.Command.Payload["password_hint"] = "cat"
	require.NoError(t, view.Save(ctx, sc))

	raw, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "secret123", raw.Variables["user_password"], "saves pass through")

	masked, err := view.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", masked.Variables["username"])
	assert.Equal(t, middleware.Mask, masked.Variables["user_password"])
	assert.Equal(t, middleware.Mask, masked.Variables["details"].(map[string]any)["ssn_number"])
	assert.Equal(t, middleware.Mask, masked.Command.Payload["password_hint"])
	assert.Equal(t, "flank", masked.Command.Payload["note"])

	again, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "secret123", again.Variables["user_password"], "masking never reaches the store")
}

func TestPIIMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	pii, err := middleware.NewPIIMiddleware([]string{"secret"})
	require.NoError(t, err)

	store := middleware.Chain(underlying, pii, enc)
	require.NoError(t, store.Save(ctx, newSession("chain")))

	loaded, err := store.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Variables["secret"], "pii masks the decrypted view")
}
