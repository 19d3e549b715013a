package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
	pkghttp "EvoTrader/pkg/http"
	applogger "EvoTrader/pkg/logger"
)

// DefaultTimeout bounds one live order round-trip.
const DefaultTimeout = 7 * time.Second

// HTTPDispatcher forwards executed decisions to an external order
// endpoint over HTTP. Any transport or non-2xx failure is folded into
// the result; Dispatch never returns an error to the caller.
type HTTPDispatcher struct {
	client  *pkghttp.Client
	timeout time.Duration
	logger  *applogger.Logger
}

// NewHTTPDispatcher creates a dispatcher with the given timeout
// (DefaultTimeout when zero).
func NewHTTPDispatcher(timeout time.Duration, l *applogger.Logger) *HTTPDispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &HTTPDispatcher{
		client:  pkghttp.NewClient(pkghttp.WithClientTimeout(timeout)),
		timeout: timeout,
		logger:  l,
	}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, endpoint string, payload *models.OrderPayload) *models.DispatchResult {
	if endpoint == "" {
		return &models.DispatchResult{Status: models.DispatchSkipped, Reason: "no_endpoint"}
	}

	dctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	code, body, err := d.client.PostJSON(dctx, endpoint, payload)
	if err != nil {
		d.logger.Error("live dispatch failed", applogger.String("endpoint", endpoint), applogger.Error(err))
		return &models.DispatchResult{Status: models.DispatchError, Error: err.Error()}
	}

	result := &models.DispatchResult{Code: code, Body: parseBody(body)}
	if code >= 200 && code < 300 {
		result.Status = models.DispatchOK
	} else {
		result.Status = models.DispatchError
		d.logger.Warn("live dispatch rejected",
			applogger.String("endpoint", endpoint),
			applogger.Int("code", code),
		)
	}
	return result
}

// parseBody keeps structured responses structured and falls back to the
// raw text otherwise.
func parseBody(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return v
}

var _ repository.Dispatcher = (*HTTPDispatcher)(nil)
