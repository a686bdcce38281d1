// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/respond"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
RateLimiter keeps one token bucket per client IP. It slows down password
guessing and reset-email flooding from a single address; it is not a
substitute for per-account lockout.
*/
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows rps sustained requests per IP with burst headroom.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// reserve takes one token for ip. It returns zero when the request may
// proceed, otherwise how long until a token is available.
func (limiter *RateLimiter) reserve(ip string) time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	entry, found := limiter.buckets[ip]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.buckets[ip] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return 0
	}

	reservation := entry.limiter.ReserveN(now, 1)
	defer reservation.CancelAt(now)
	if !reservation.OK() {
		return time.Second
	}
	return max(reservation.DelayFrom(now), time.Second)
}

// Sweep drops buckets idle for longer than ttl.
func (limiter *RateLimiter) Sweep(ttl time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for ip, entry := range limiter.buckets {
		if time.Since(entry.lastSeen) > ttl {
			delete(limiter.buckets, ip)
		}
	}
}

// Run sweeps idle buckets until context is cancelled.
func (limiter *RateLimiter) Run(context context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep(constants.RateLimitClientTTL)
		case <-context.Done():
			return
		}
	}
}

// Middleware answers 429 with Retry-After once an IP exhausts its bucket.
func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		wait := limiter.reserve(RealIP(request))
		if wait == 0 {
			next.ServeHTTP(writer, request)
			return
		}

		seconds := int(math.Ceil(wait.Seconds()))
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
		respond.Error(writer, request, apperr.RateLimited(seconds))
	})
}
