package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
)

// TimeLayout is the ISO 8601 form the backend expects for reading windows.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client talks JSON to the backend at a fixed base URL. A Client obtained
// through WithToken attaches the session token to every request.
type Client struct {
	rest  *resty.Client
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{rest: rest}
}

// NewClientWith wraps an existing resty client, mostly for tests.
func NewClientWith(rest *resty.Client) *Client {
	return &Client{rest: rest}
}

func (c *Client) BaseURL() string {
	return c.rest.BaseURL
}

func (c *Client) WithToken(token string) *Client {
	return &Client{rest: c.rest, token: token}
}

func (c *Client) call(ctx context.Context, method, path string, body any, result any) error {
	logger := common.GetLoggerWith(common.LoggerNameApiClient)

	req := c.rest.R().SetContext(ctx).SetError(&errorBody{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		logger.Warn("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &APIError{Code: ErrorCodeTransport, Message: "request failed", Err: err}
	}

	logger.Debug("Request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()))

	if resp.IsError() {
		message := http.StatusText(resp.StatusCode())
		if eb, ok := resp.Error().(*errorBody); ok {
			if eb.Message != "" {
				message = eb.Message
			} else if eb.Error != "" {
				message = eb.Error
			}
		}
		logger.Warn("Request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", message))
		return NewAPIError(codeForStatus(resp.StatusCode()), message, resp.StatusCode())
	}

	return nil
}

func devicePath(id string, suffix ...string) string {
	p := "/api/devices/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func userPath(id string, suffix ...string) string {
	p := "/api/users/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// FormatTime renders t the way the readings endpoint expects.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func notFound(what string, id string) error {
	return NewAPIError(ErrorCodeNotFound, fmt.Sprintf("%s %s not found", what, id), http.StatusNotFound)
}
