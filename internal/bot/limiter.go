package bot

import (
	"sync"

	"otchetnik/internal/models"

	"golang.org/x/time/rate"
)

// rateLimiter holds a token bucket per user so one chatty sender cannot
// starve the bot for everyone else.
type rateLimiter struct {
	limiters sync.Map
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{}
}

func (l *rateLimiter) allow(userID int64) bool {
	return l.getLimiter(userID).Allow()
}

func (l *rateLimiter) getLimiter(userID int64) *rate.Limiter {
	if v, ok := l.limiters.Load(userID); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	// RateLimitMessages за RateLimitWindow секунд, небольшой burst
	perSecond := float64(models.RateLimitMessages) / float64(models.RateLimitWindow)
	lim := rate.NewLimiter(rate.Limit(perSecond), 5)
	actual, loaded := l.limiters.LoadOrStore(userID, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
