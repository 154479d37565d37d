package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AuthRateLimit throttles requests per client IP. Signup and token
// exchange are cheap to spam, so they get a small bucket; stale entries
// are evicted so the map does not grow forever.
func AuthRateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var mu sync.Mutex
	clients := make(map[string]*client)

	// the limiter auto depletes tokens when Allow is called and refills over time
	getLimiter := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(r, burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()

		if len(clients) > 10000 {
			cutoff := time.Now().Add(-10 * time.Minute)
			for ip, c := range clients {
				if c.lastSeen.Before(cutoff) {
					delete(clients, ip)
				}
			}
		}
		return c.limiter
	}

	return func(c *gin.Context) {
		if !getLimiter(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
