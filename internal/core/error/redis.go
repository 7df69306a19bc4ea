package errx

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError: missing keys are 404, a closed
// client is 503, timeouts are 504 and anything else is 502.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, redis.Nil):
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	case errors.Is(err, redis.ErrClosed):
		return New(err, http.StatusServiceUnavailable, RedisErrorMessage)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return New(err, http.StatusGatewayTimeout, RedisErrorMessage)
	}

	return New(err, http.StatusBadGateway, RedisErrorMessage)
}
