package middleware

import (
	"context"
	"encoding/json"
	"time"

	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrorLogSize caps the Redis error log list.
const ErrorLogSize = 50

// NewErrorHandler returns the global error handler. Errors are answered in
// the standard envelope; 5xx are also pushed to the health error log.
func NewErrorHandler(rdb *redis.Client, logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
			recordError(rdb, c, code, err)
		}
		return response.Error(c, message, code, nil)
	}
}

func recordError(rdb *redis.Client, c *fiber.Ctx, code int, err error) {
	if rdb == nil {
		return
	}
	b, _ := json.Marshal(map[string]interface{}{
		"time":       time.Now(),
		"method":     c.Method(),
		"path":       c.OriginalURL(),
		"statusCode": code,
		"message":    err.Error(),
		"traceId":    GetTraceID(c),
	})
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
