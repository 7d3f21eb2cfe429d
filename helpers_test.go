package goSession

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var testSigningKey = []byte("engine-test-signing-key")

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func mintTestToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return token
}

type fakeUser struct {
	id       string
	email    string
	password string
	role     string
}

// fakeProvider is an in-memory IdentityProvider with per-method call counters
// so tests can assert how many times the engine reached past the cache.
type fakeProvider struct {
	t *testing.T

	mu       sync.Mutex
	users    map[string]fakeUser
	byToken  map[string]string
	refresh  map[string]string
	tokenTTL time.Duration

	// MFA behavior knobs.
	assurance AssuranceLevel
	factors   []Factor
	goodCode  string

	// Failure injection.
	unavailable          bool
	assuranceUnavailable bool
	factorsUnavailable   bool
	verifyUnavailable    bool

	verifyCalls    atomic.Int64
	signInCalls    atomic.Int64
	refreshCalls   atomic.Int64
	challengeCalls atomic.Int64
	verifyFACalls  atomic.Int64
	unenrollCalls  atomic.Int64
	mintCounter    atomic.Int64
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	return &fakeProvider{
		t:         t,
		users:     make(map[string]fakeUser),
		byToken:   make(map[string]string),
		refresh:   make(map[string]string),
		tokenTTL:  time.Hour,
		assurance: AAL2,
		goodCode:  "123456",
	}
}

func (p *fakeProvider) putUser(id, email, password, role string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[email] = fakeUser{id: id, email: email, password: password, role: role}
}

func (p *fakeProvider) outage() error {
	return &ProviderError{Code: "service_unavailable", Message: "upstream down", Temporary: true}
}

func (p *fakeProvider) mintLocked(u fakeUser) *ProviderSession {
	n := p.mintCounter.Add(1)
	claims := jwt.MapClaims{
		"sub": u.id,
		"exp": time.Now().Add(p.tokenTTL).Unix(),
		"jti": fmt.Sprintf("mint-%d", n),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		p.t.Fatalf("SignedString failed: %v", err)
	}
	refreshToken := fmt.Sprintf("refresh-%s-%d", u.id, n)

	p.byToken[access] = u.email
	p.refresh[refreshToken] = u.email

	metadata := map[string]string{}
	if u.role != "" {
		metadata["role"] = u.role
	}
	return &ProviderSession{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(p.tokenTTL / time.Second),
		User: &ProviderUser{
			ID:       u.id,
			Email:    u.email,
			Metadata: metadata,
		},
	}
}

func (p *fakeProvider) VerifyToken(_ context.Context, token string) (*ProviderUser, error) {
	p.verifyCalls.Add(1)
	if p.unavailable || p.verifyUnavailable {
		return nil, p.outage()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.byToken[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	u := p.users[email]

	metadata := map[string]string{}
	if u.role != "" {
		metadata["role"] = u.role
	}
	return &ProviderUser{ID: u.id, Email: u.email, Metadata: metadata}, nil
}

func (p *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*ProviderSession, error) {
	p.signInCalls.Add(1)
	if p.unavailable {
		return nil, p.outage()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[email]
	if !ok || u.password != password {
		return nil, fmt.Errorf("invalid login credentials")
	}
	return p.mintLocked(u), nil
}

func (p *fakeProvider) RefreshSession(_ context.Context, refreshToken string) (*ProviderSession, error) {
	p.refreshCalls.Add(1)
	if p.unavailable {
		return nil, p.outage()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.refresh[refreshToken]
	if !ok {
		return nil, fmt.Errorf("refresh token not found")
	}
	delete(p.refresh, refreshToken)
	return p.mintLocked(p.users[email]), nil
}

func (p *fakeProvider) AssuranceLevel(_ context.Context, _ string) (AssuranceLevel, error) {
	if p.unavailable || p.assuranceUnavailable {
		return "", p.outage()
	}
	return p.assurance, nil
}

func (p *fakeProvider) ListFactors(_ context.Context, _ string) ([]Factor, error) {
	if p.unavailable || p.factorsUnavailable {
		return nil, p.outage()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Factor, len(p.factors))
	copy(out, p.factors)
	return out, nil
}

func (p *fakeProvider) EnrollFactor(_ context.Context, _, factorType string) (*Factor, error) {
	if p.unavailable {
		return nil, p.outage()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	factor := Factor{ID: fmt.Sprintf("factor-%d", len(p.factors)+1), Type: factorType}
	p.factors = append(p.factors, factor)
	return &factor, nil
}

func (p *fakeProvider) UnenrollFactor(_ context.Context, _, factorID string) error {
	p.unenrollCalls.Add(1)
	if p.unavailable {
		return p.outage()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, f := range p.factors {
		if f.ID == factorID {
			p.factors = append(p.factors[:i], p.factors[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("factor not found")
}

func (p *fakeProvider) ChallengeFactor(_ context.Context, _, factorID string) (*Challenge, error) {
	p.challengeCalls.Add(1)
	if p.unavailable {
		return nil, p.outage()
	}
	return &Challenge{ID: "challenge-" + factorID}, nil
}

func (p *fakeProvider) VerifyFactor(_ context.Context, _, _, _, code string) error {
	p.verifyFACalls.Add(1)
	if p.unavailable {
		return p.outage()
	}
	if code != p.goodCode {
		return fmt.Errorf("invalid TOTP code")
	}
	return nil
}

func engineTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Security.EnableIPThrottle = false
	cfg.Security.EnableRefreshThrottle = false
	return cfg
}

func buildTestEngine(t *testing.T, cfg Config, provider IdentityProvider) (*Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithProvider(provider).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
