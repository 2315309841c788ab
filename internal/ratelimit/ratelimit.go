package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"goodsmarket/internal/auth"
)

// Policy sets the request ceilings per caller class. Anonymous callers are
// keyed by remote address, authenticated callers by user id.
type Policy struct {
	AnonRate  rate.Limit
	AnonBurst int
	UserRate  rate.Limit
	UserBurst int
}

func DefaultPolicy() Policy {
	return Policy{
		AnonRate:  rate.Limit(2),
		AnonBurst: 5,
		UserRate:  rate.Limit(10),
		UserBurst: 20,
	}
}

// visitorTTL bounds how long an idle caller keeps its bucket. Stale entries
// are swept on access so the visitor map cannot grow without bound.
const visitorTTL = 10 * time.Minute

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	policy    Policy
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

func New(policy Policy) *Limiter {
	return &Limiter{
		policy:    policy,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *Limiter) limiterFor(key string, anon bool) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v.lim
	}
	var lim *rate.Limiter
	if anon {
		lim = rate.NewLimiter(l.policy.AnonRate, l.policy.AnonBurst)
	} else {
		lim = rate.NewLimiter(l.policy.UserRate, l.policy.UserBurst)
	}
	l.visitors[key] = &visitor{lim: lim, lastSeen: now}
	return lim
}

// Middleware enforces the policy at the boundary, before any workflow runs.
func (l *Limiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := "anon:" + c.RealIP()
		anon := true
		if id, ok := auth.CallerID(c); ok {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
			anon = false
		}
		if !l.limiterFor(key, anon).Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "request was throttled")
		}
		return next(c)
	}
}
