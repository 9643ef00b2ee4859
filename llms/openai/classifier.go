package openai

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ragforge/llminvoke/invoker"
)

// Classifier returns the retry classification for OpenAI-compatible APIs:
// rate limits, timeouts, and transient server errors are retryable; a 429
// is additionally a rate-limit error whose message may carry a recommended
// sleep ("Please retry after 7 seconds.", as Azure phrases it).
func Classifier() invoker.Classifier {
	return invoker.Classifier{
		IsRetryable:         isRetryable,
		IsRateLimit:         isRateLimit,
		SleepRecommendation: sleepRecommendation,
	}
}

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus[apiErr.HTTPStatusCode]
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus[reqErr.HTTPStatusCode]
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

var retryAfterPattern = regexp.MustCompile(`(?i)retry after (\d+) seconds?`)

// sleepRecommendation extracts the provider-recommended sleep from a
// rate-limit error message, 0 when none is present.
func sleepRecommendation(err error) time.Duration {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return 0
	}
	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if match == nil {
		return 0
	}
	seconds, convErr := strconv.Atoi(match[1])
	if convErr != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
