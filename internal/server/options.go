package server

import (
	"time"

	"github.com/agbru/fibcost/internal/logging"
	"github.com/agbru/fibcost/internal/service"
)

// Option configures a Server in NewServer.
type Option func(*Server)

// WithLogger replaces the default JSON logger on stdout. nil is ignored.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithService replaces the calculator-backed service, typically with a mock.
// nil is ignored.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts replaces DefaultServerTimeouts.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// WithRateLimiter replaces the default limiter. The server stops it when
// Start returns.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxRecursiveN overrides the largest n served for the recursive
// algorithm, and the largest n the rate limiter prices by its cost. The
// service ignores it when combined with WithService.
func WithMaxRecursiveN(maxN int) Option {
	return func(s *Server) {
		s.cfg.MaxRecursiveN = maxN
	}
}

// Timeouts bounds calculations and the underlying http.Server.
type Timeouts struct {
	// RequestTimeout caps one /calculate or a whole /compare.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// DefaultServerTimeouts leaves room for a recursive run at the default
// limit of n = 35 within RequestTimeout.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
