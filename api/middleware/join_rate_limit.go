package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/trailteams-backend/api/responses"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/trailteams-backend/pkg/redis"
)

// FixedWindowLimiter counts hits per scope inside a fixed window.
type FixedWindowLimiter interface {
	FixedWindow(ctx context.Context, scope string, limit int64, window time.Duration) (pkgredis.Window, error)
}

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	name      string
	window    time.Duration
	ipLimit   int
	userLimit int
}

// NewRateLimitPolicy builds a policy with the supplied window and limits.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, userLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:      strings.ToLower(strings.TrimSpace(name)),
		window:    window,
		ipLimit:   ipLimit,
		userLimit: userLimit,
	}
}

// JoinRateLimitPolicy throttles invite-code guessing.
func JoinRateLimitPolicy(cfg config.JoinRateLimitConfig) RateLimitPolicy {
	return NewRateLimitPolicy("join", cfg.Window, cfg.IPLimit, cfg.UserLimit)
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.userLimit > 0)
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

func (p RateLimitPolicy) scope(kind, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", p.normalizedName(), kind, value)
}

// RateLimit enforces per-IP and per-caller counters. It must run after Identity
// so the caller's open id is available.
func RateLimit(policy RateLimitPolicy, limiter FixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				ip := clientIP(r)
				if scope := policy.scope("ip", ip); scope != "" {
					if !enforce(ctx, w, limiter, logg, policy, scope, "ip", policy.ipLimit) {
						return
					}
				}
			}

			if policy.userLimit > 0 {
				if openID := OpenIDFromContext(ctx); openID != "" {
					scope := policy.scope("user", hashValue(openID))
					if !enforce(ctx, w, limiter, logg, policy, scope, "user", policy.userLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func enforce(ctx context.Context, w http.ResponseWriter, limiter FixedWindowLimiter, logg *logger.Logger, policy RateLimitPolicy, scope, kind string, limit int) bool {
	win, err := limiter.FixedWindow(ctx, scope, int64(limit), policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if win.Allowed {
		return true
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          kind,
			"policy":         policy.normalizedName(),
			"attempts":       win.Count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(win.ResetIn, policy.window)))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return false
}

// retryAfterSeconds rounds the remaining window up to whole seconds.
func retryAfterSeconds(resetIn, window time.Duration) int {
	if resetIn <= 0 {
		resetIn = window
	}
	secs := int((resetIn + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
