package ubisoft

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/siegedash/r6stats/internal/constants"
	"github.com/siegedash/r6stats/internal/domain"
	"github.com/siegedash/r6stats/internal/logging"
	"github.com/siegedash/r6stats/internal/reporting"
)

const BASE_URL = "https://public-ubiservices.ubi.com"
const APP_ID = "3587dcbb-7f81-457c-9781-0e3f29f6f56a"

const maxErrorBodyLength = 200

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient HttpClient
	nowFunc    func() time.Time
}

func NewClient(httpClient HttpClient, nowFunc func() time.Time) *Client {
	return &Client{
		httpClient: httpClient,
		nowFunc:    nowFunc,
	}
}

var tracer = otel.Tracer("r6stats/ubisoft")

type sessionResponse struct {
	Ticket                        string `json:"ticket"`
	SessionID                     string `json:"sessionId"`
	Expiration                    string `json:"expiration"`
	ProfileID                     string `json:"profileId"`
	TwoFactorAuthenticationTicket string `json:"twoFactorAuthenticationTicket"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// OpenSession authenticates with the given credentials. The returned session must be closed.
func (c *Client) OpenSession(ctx context.Context, credentials domain.Credentials) (*Session, error) {
	if !credentials.Complete() {
		return nil, domain.ErrMissingCredentials
	}

	basicAuth := base64.StdEncoding.EncodeToString([]byte(credentials.Email + ":" + credentials.Password))
	headers := map[string]string{
		"Authorization": "Basic " + basicAuth,
		"Content-Type":  "application/json",
	}

	data, statusCode, err := c.do(ctx, "open_session", http.MethodPost, BASE_URL+"/v3/profiles/sessions", headers, []byte(`{"rememberMe":true}`))
	if err != nil {
		// NOTE: do handles its own error reporting
		return nil, err
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		// Expected for bad credentials, don't report
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, errorMessage(data))
	}

	if err := checkStatus("open_session", statusCode, data); err != nil {
		reporting.Report(ctx, err, map[string]string{
			"status": strconv.Itoa(statusCode),
		})
		return nil, err
	}

	var response sessionResponse
	if err := json.Unmarshal(data, &response); err != nil {
		err := fmt.Errorf("failed to parse session response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data": truncate(string(data)),
		})
		return nil, err
	}

	if response.Ticket == "" {
		if response.TwoFactorAuthenticationTicket != "" {
			return nil, domain.ErrTwoFactorRequired
		}
		err := fmt.Errorf("session response is missing a ticket")
		reporting.Report(ctx, err)
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Opened ubisoft session", "expiration", response.Expiration)

	return &Session{
		client:     c,
		ticket:     response.Ticket,
		sessionID:  response.SessionID,
		expiration: response.Expiration,
	}, nil
}

// do performs a single request. Only transport failures are returned as errors, the status
// code is left to the caller.
func (c *Client) do(ctx context.Context, endpoint, method, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	ctx, span := tracer.Start(ctx, "ubisoft."+endpoint)
	defer span.End()

	logger := logging.FromContext(ctx)

	fail := func(err error) ([]byte, int, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.requestCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", "error"),
		))
		logger.ErrorContext(ctx, err.Error(), "endpoint", endpoint)
		reporting.Report(ctx, err, map[string]string{
			"endpoint": endpoint,
		})
		return []byte{}, -1, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Ubi-AppId", APP_ID)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := c.nowFunc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %w", err)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrTemporarilyUnavailable, err)
		}
		return fail(err)
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("failed to read response body: %w", err))
	}

	duration := c.nowFunc().Sub(start)
	attributes := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", strconv.Itoa(resp.StatusCode)),
	)
	metrics.requestCount.Add(ctx, 1, attributes)
	metrics.requestDuration.Record(ctx, duration.Seconds(), attributes)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	logger.InfoContext(ctx, "ubisoft request completed", "endpoint", endpoint, "status", resp.StatusCode, "duration", duration.String())

	return data, resp.StatusCode, nil
}

func checkStatus(endpoint string, statusCode int, data []byte) error {
	switch statusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return fmt.Errorf("%w: ubisoft %s returned status code %d", domain.ErrTemporarilyUnavailable, endpoint, statusCode)
	}
	return fmt.Errorf("ubisoft %s returned status code %d: %s", endpoint, statusCode, errorMessage(data))
}

// errorMessage extracts the message from an error payload, falling back to the raw body
func errorMessage(data []byte) string {
	var response errorResponse
	if err := json.Unmarshal(data, &response); err == nil && response.Message != "" {
		return response.Message
	}
	if len(data) == 0 {
		return "<empty body>"
	}
	return truncate(string(data))
}

func truncate(s string) string {
	if len(s) <= maxErrorBodyLength {
		return s
	}
	return s[:maxErrorBodyLength] + "..."
}
