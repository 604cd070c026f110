package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/agbru/fibcost/internal/fibonacci"
)

// CallsPerToken is the number of recursive step invocations one rate-limit
// token pays for, on top of the token every request costs.
const CallsPerToken = 1 << 20

// RateLimiterConfig sizes the per-client token budget.
type RateLimiterConfig struct {
	// TokensPerMinute is both the refill rate and the burst size.
	// Default: 60
	TokensPerMinute int
	// CleanupInterval is how often clients with a full bucket are forgotten.
	// Default: 5 minutes
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		TokensPerMinute: 60,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimiter keeps one token bucket per client IP. Requests are charged by
// the work they ask for, see requestTokens.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	cleanup  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its cleanup goroutine. Call Stop when
// done with it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.TokensPerMinute <= 0 {
		config.TokensPerMinute = def.TokensPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		clients:  make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(config.TokensPerMinute) / time.Minute.Seconds()),
		burst:    config.TokensPerMinute,
		cleanup:  config.CleanupInterval,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Take charges tokens to clientIP. When the bucket is short it charges
// nothing and returns false with the wait until the request would fit.
// A charge above the burst size is capped to it, so any request can pass
// with a full bucket.
func (rl *RateLimiter) Take(clientIP string, tokens int) (bool, time.Duration) {
	tokens = max(1, min(tokens, rl.burst))
	now := time.Now()

	rl.mu.Lock()
	lim, ok := rl.clients[clientIP]
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[clientIP] = lim
	}
	rl.mu.Unlock()

	res := lim.ReserveN(now, tokens)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// prune forgets clients whose bucket has refilled; they are
// indistinguishable from new ones.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, lim := range rl.clients {
		if lim.TokensAt(now) >= float64(rl.burst) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.prune(now)
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// requestTokens prices a request: one token, plus one per CallsPerToken
// step invocations when it runs the recursive algorithm at an index no
// larger than maxRecursiveN. /compare always runs it.
func requestTokens(r *http.Request, maxRecursiveN int) int {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/compare":
	case "/calculate":
		if q.Get("algo") != fibonacci.RecursiveName {
			return 1
		}
	default:
		return 1
	}

	n, err := strconv.Atoi(q.Get("n"))
	if err != nil || (maxRecursiveN > 0 && n > maxRecursiveN) {
		return 1
	}
	calls, err := fibonacci.RecursiveCost(n)
	if err != nil {
		return 1
	}
	extra := calls / CallsPerToken
	if extra >= math.MaxInt32 {
		return math.MaxInt32
	}
	return 1 + int(extra)
}

// rateLimitMiddleware rejects requests the client's budget cannot cover
// with 429 and a Retry-After in whole seconds.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := s.rateLimiter.Take(getClientIP(r), requestTokens(r, s.cfg.MaxRecursiveN))
		if !ok {
			rateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			s.writeErrorResponse(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next(w, r)
	}
}

// getClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return extractFirstIP(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return stripPort(r.RemoteAddr)
}

func extractFirstIP(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// stripPort drops the port from host:port, IPv6 brackets included.
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
