package client

import "sync"

// Tokens is an access/refresh token pair.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenStore holds the session tokens and persists refreshed ones.
type TokenStore interface {
	Tokens() Tokens
	SaveTokens(Tokens) error
	ClearTokens() error
}

// MemoryTokens is a TokenStore that lives only as long as the process.
type MemoryTokens struct {
	mu     sync.Mutex
	tokens Tokens
}

// NewMemoryTokens creates an in-memory store seeded with t.
func NewMemoryTokens(t Tokens) *MemoryTokens {
	return &MemoryTokens{tokens: t}
}

// Tokens implements TokenStore.
func (m *MemoryTokens) Tokens() Tokens {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens
}

// SaveTokens implements TokenStore.
func (m *MemoryTokens) SaveTokens(t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	return nil
}

// ClearTokens implements TokenStore.
func (m *MemoryTokens) ClearTokens() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	return nil
}
