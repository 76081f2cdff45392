package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// Mask replaces the value of every masked key.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks the values of variables and payload keys matching
// any pattern when a session is loaded. Saves pass through untouched, so the
// wrapped store is meant for read-only views (inspection, listings).
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.SessionContext) error {
	return m.next.Save(ctx, session)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	sc, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	masked := *sc
	masked.Variables = deepCopyMap(sc.Variables)
	maskMap(masked.Variables, m.patterns)
	if sc.Command.Payload != nil {
		masked.Command.Payload = deepCopyMap(sc.Command.Payload)
		maskMap(masked.Command.Payload, m.patterns)
	}
	return &masked, nil
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns)
		}
	}
}
