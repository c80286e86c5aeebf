package ratelimit

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// LimitByIP creates a middleware that rate limits by client IP address.
func LimitByIP(limiter Limiter, scope string, limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit.Requests <= 0 || limit.Window <= 0 {
			return c.Next()
		}
		key := scope + ":ip:" + clientIP(c)
		allowed, info := limiter.Allow(c.UserContext(), key, limit)

		c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset.Unix(), 10))

		if !allowed {
			return apperrors.NewTooManyRequests("rate limit exceeded")
		}
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xrip := c.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	return c.IP()
}
