package httputils

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/autobrr/hldup/pkg/logger"
)

const (
	defaultRetryMax     = 3
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 10 * time.Second
)

// leveledLogger adapts a logrus entry to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log *logrus.Entry
}

func (l *leveledLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	e := l.log
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.WithField(key, keysAndValues[i+1])
	}
	return e
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Trace(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

// NewRetryableHttpClient returns a standard http.Client that retries failed
// requests and waits on rl before every attempt. A nil rl disables limiting.
func NewRetryableHttpClient(timeout time.Duration, rl ratelimit.Limiter) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = defaultRetryMax
	c.RetryWaitMin = defaultRetryWaitMin
	c.RetryWaitMax = defaultRetryWaitMax
	c.Logger = &leveledLogger{log: logger.GetLogger("http")}
	c.HTTPClient.Timeout = timeout

	if rl != nil {
		c.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, _ int) {
			rl.Take()
		}
	}

	return c.StandardClient()
}
