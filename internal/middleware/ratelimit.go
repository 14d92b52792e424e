package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinematrix/cinematrix/internal/config"
)

// RateLimit applies a fixed-window counter per user (falling back to
// client IP) and route. The counter key embeds the window number, so
// expired windows reset naturally; EXPIRE keeps abandoned keys from
// accumulating. Redis errors fail open: limiting is a protection, not
// a dependency.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := "anon"
			if v, ok := c.Get("user_id").(string); ok && v != "" {
				subject = v
			} else if ip := c.RealIP(); ip != "" {
				subject = ip
			}
			winSecs := int64(cfg.Window / time.Second)
			if winSecs < 1 {
				winSecs = 1
			}
			window := time.Now().Unix() / winSecs
			key := cfg.Prefix + ":" + subject + ":" + c.Request().Method + ":" + c.Path() +
				":" + strconv.FormatInt(window, 10)

			ctx := c.Request().Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retry := int(cfg.Window / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}
