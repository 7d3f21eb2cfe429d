package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

type sessionState struct {
	refreshToken string
	mu           sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (resolve + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	var client *redis.Client
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	provider := newBenchProvider()

	cfg := goSession.DefaultConfig()
	cfg.Security.EnableRefreshThrottle = false
	cfg.Security.EnableIPThrottle = false

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(client).
		WithProvider(provider).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]sessionState, *sessions)
	accessTokens := make([]string, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		result, err := engine.Login(ctx, fmt.Sprintf("user-%d@bench.local", i), "bench-password")
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = sessionState{refreshToken: result.Session.RefreshToken}
		accessTokens[i] = result.Session.AccessToken
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	resolveStats := runResolvePhase(ctx, engine, accessTokens, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("resolve", resolveStats)
	printStats("refresh", refreshStats)
	fmt.Printf("provider verify calls: %d\n", provider.VerifyCalls())
}

func runResolvePhase(ctx context.Context, engine *goSession.Engine, tokens []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(tokens))
				t0 := time.Now()
				_, err := engine.Resolve(ctx, tokens[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *goSession.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				bundle, err := engine.Refresh(ctx, state.refreshToken)
				d := time.Since(t0)
				if err == nil {
					state.refreshToken = bundle.RefreshToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// ---------------------------------------------------------------------------
// In-memory bench provider. Every email/password pair is accepted; tokens are
// real JWTs so the engine exercises the same TTL derivation as production.
// ---------------------------------------------------------------------------

var benchSigningKey = []byte("loadtest-signing-key")

type benchProvider struct {
	mu          sync.RWMutex
	byToken     map[string]string
	byRefresh   map[string]string
	verifyCalls int64
	counter     int64
}

func newBenchProvider() *benchProvider {
	return &benchProvider{
		byToken:   make(map[string]string),
		byRefresh: make(map[string]string),
	}
}

func (p *benchProvider) VerifyCalls() int64 {
	return atomic.LoadInt64(&p.verifyCalls)
}

func (p *benchProvider) mint(userID, email string) (*goSession.ProviderSession, error) {
	n := atomic.AddInt64(&p.counter, 1)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": fmt.Sprintf("bench-%d", n),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(benchSigningKey)
	if err != nil {
		return nil, err
	}
	refresh := fmt.Sprintf("refresh-%d", n)

	p.mu.Lock()
	p.byToken[access] = userID
	p.byRefresh[refresh] = userID
	p.mu.Unlock()

	return &goSession.ProviderSession{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    3600,
		User:         &goSession.ProviderUser{ID: userID, Email: email},
	}, nil
}

func (p *benchProvider) VerifyToken(_ context.Context, token string) (*goSession.ProviderUser, error) {
	atomic.AddInt64(&p.verifyCalls, 1)
	p.mu.RLock()
	userID, ok := p.byToken[token]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return &goSession.ProviderUser{ID: userID, Email: userID + "@bench.local"}, nil
}

func (p *benchProvider) SignInWithPassword(_ context.Context, email, _ string) (*goSession.ProviderSession, error) {
	return p.mint("user-"+email, email)
}

func (p *benchProvider) RefreshSession(_ context.Context, refreshToken string) (*goSession.ProviderSession, error) {
	p.mu.Lock()
	userID, ok := p.byRefresh[refreshToken]
	if ok {
		delete(p.byRefresh, refreshToken)
	}
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown refresh token")
	}
	return p.mint(userID, userID+"@bench.local")
}

func (p *benchProvider) AssuranceLevel(_ context.Context, _ string) (goSession.AssuranceLevel, error) {
	return goSession.AAL2, nil
}

func (p *benchProvider) ListFactors(_ context.Context, _ string) ([]goSession.Factor, error) {
	return nil, nil
}

func (p *benchProvider) EnrollFactor(_ context.Context, _, factorType string) (*goSession.Factor, error) {
	return &goSession.Factor{ID: "bench-factor", Type: factorType}, nil
}

func (p *benchProvider) UnenrollFactor(_ context.Context, _, _ string) error { return nil }

func (p *benchProvider) ChallengeFactor(_ context.Context, _, _ string) (*goSession.Challenge, error) {
	return &goSession.Challenge{ID: "bench-challenge"}, nil
}

func (p *benchProvider) VerifyFactor(_ context.Context, _, _, _, _ string) error { return nil }
