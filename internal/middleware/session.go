package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionRedisPrefix is the key prefix under which the login service stores
// sessions. Only lookup happens here.
const SessionRedisPrefix = "session:"

const userIDLocal = "user_id"

// SessionData is the part of a stored session this service reads.
type SessionData struct {
	UserID uint `json:"user_id"`
}

// SessionKey returns the Redis key for a session ID.
func SessionKey(sid string) string {
	return SessionRedisPrefix + sid
}

// ParseSessionCookie extracts the session ID from a cookie value. Signed
// cookies look like "s:<id>.<signature>".
func ParseSessionCookie(raw string) string {
	if strings.HasPrefix(raw, "s:") {
		parts := strings.SplitN(raw[2:], ".", 2)
		return parts[0]
	}
	return raw
}

// Session resolves the session cookie to a user ID. Requests without a valid
// session continue anonymously; RequireAuth rejects them where needed.
func Session(rdb *redis.Client, cookieName string, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ParseSessionCookie(c.Cookies(cookieName))
		if sid == "" || rdb == nil {
			return c.Next()
		}
		b, err := rdb.Get(c.UserContext(), SessionKey(sid)).Bytes()
		if err != nil {
			if err != redis.Nil {
				logger.Warn().Err(err).Msg("session lookup failed")
			}
			return c.Next()
		}
		var data SessionData
		if err := json.Unmarshal(b, &data); err != nil {
			logger.Warn().Err(err).Msg("malformed session payload")
			return c.Next()
		}
		if data.UserID != 0 {
			c.Locals(userIDLocal, data.UserID)
		}
		return c.Next()
	}
}
