package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Sign-in / sign-up (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Live search keystrokes
	limitSearch = rate.Limit(20)
	burstSearch = 40

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller and tier.
type RateLimiter struct {
	internalKey string

	mu       sync.Mutex
	visitors map[string]*visitor

	stop chan struct{}
	once sync.Once
}

// NewRateLimiter starts the background cleanup; call Stop to end it.
// internalKey, when set, is the X-Service-Auth value of trusted services.
func NewRateLimiter(internalKey string) *RateLimiter {
	l := &RateLimiter{
		internalKey: internalKey,
		visitors:    make(map[string]*visitor),
		stop:        make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes idle visitors so the map does not grow forever.
func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle(time.Now())
		}
	}
}

func (l *RateLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Determine Rate Tier
		limit, burst, tier := l.resolveRateTier(r)

		// 2. Determine Identity Key
		key := fmt.Sprintf("%s:%s", identity(r), tier)

		if !l.getVisitor(key, limit, burst).Allow() {
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
			)
			utils.WriteJSONError(w, utils.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity prefers the user, then the device, then the remote IP.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := logger.DeviceIDFrom(r.Context()); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func (l *RateLimiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/auth/") && r.Method == http.MethodPost:
		return limitStrict, burstStrict, "strict"
	case r.URL.Path == "/api/products" || strings.HasPrefix(r.URL.Path, "/ws/"):
		return limitSearch, burstSearch, "search"
	}

	return limitGeneral, burstGeneral, "general"
}
