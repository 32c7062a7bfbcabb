package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
)

// classify maps a gateway failure onto the upstream error taxonomy.
// Calls are never retried here.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %v", apperr.ErrUpstreamUnavailable, err)
}

func fromStatus(code int, cause error) error {
	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", apperr.ErrUpstreamRateLimited, cause)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", apperr.ErrUpstreamQuotaExhausted, cause)
	default:
		return fmt.Errorf("%w: status %d: %v", apperr.ErrUpstreamUnavailable, code, cause)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrUpstreamRateLimited):
		return "rate_limited"
	case errors.Is(err, apperr.ErrUpstreamQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, apperr.ErrMissingConfiguration):
		return "unconfigured"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unavailable"
	}
}
