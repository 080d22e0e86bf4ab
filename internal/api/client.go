package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/julianfbeck/plex-cli/internal/mediacontainer"
)

const (
	defaultProduct = "plexctl"
	defaultVersion = "0.1"

	// DefaultAccountURL is the plex.tv endpoint that knows the account's
	// devices and issues tokens.
	DefaultAccountURL = "https://plex.tv"
)

type Client struct {
	baseURL    string
	accountURL string
	token      string
	clientID   string
	deviceName string
	format     mediacontainer.ContentType
	http       *resty.Client
	logger     *slog.Logger
}

func NewClient(baseURL, token, clientID, deviceName string, timeout time.Duration) *Client {
	if deviceName == "" {
		deviceName = defaultProduct
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountURL: DefaultAccountURL,
		token:      token,
		clientID:   clientID,
		deviceName: deviceName,
		format:     mediacontainer.ContentXML,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.http = resty.New().
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"X-Plex-Product":           defaultProduct,
			"X-Plex-Version":           defaultVersion,
			"X-Plex-Client-Identifier": clientID,
			"X-Plex-Device-Name":       deviceName,
		}).
		SetLogger(restyLogger{c})
	return c
}

func (c *Client) SetAuth(token string) {
	c.token = token
}

func (c *Client) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetFormat selects the representation requested from the server. XML is
// the default; the server answers JSON only when asked for it.
func (c *Client) SetFormat(ct mediacontainer.ContentType) {
	c.format = ct
}

// SetAccountURL points account calls (sign-in, devices) somewhere other
// than plex.tv.
func (c *Client) SetAccountURL(u string) {
	c.accountURL = strings.TrimRight(u, "/")
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ServerInfo(ctx context.Context) (mediacontainer.ServerInfo, error) {
	return fetch[mediacontainer.ServerInfo](ctx, c, c.baseURL+"/", c.format)
}

func (c *Client) LibrarySections(ctx context.Context) (mediacontainer.LibrarySections, error) {
	return fetch[mediacontainer.LibrarySections](ctx, c, c.baseURL+"/library/sections", c.format)
}

func (c *Client) Preferences(ctx context.Context) (mediacontainer.Preferences, error) {
	return fetch[mediacontainer.Preferences](ctx, c, c.baseURL+"/:/prefs", c.format)
}

// Devices lists every device registered with the account and attaches the
// client's token to each of them.
func (c *Client) Devices(ctx context.Context) ([]mediacontainer.Device, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	list, err := fetch[mediacontainer.DeviceList](ctx, c, c.accountURL+"/devices.xml", mediacontainer.ContentXML)
	if err != nil {
		return nil, err
	}
	return list.Authenticate(c.token), nil
}

func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResponse, error) {
	var out SignInResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBasicAuth(username, password).
		SetResult(&out).
		Post(c.accountURL + "/users/sign_in.json")
	if err != nil {
		return nil, err
	}
	c.logResponse(resp)
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sign in failed: %w", responseError(resp, mediacontainer.ContentJSON))
	}
	if out.User.AuthToken == "" {
		return nil, errors.New("sign in succeeded but no token was returned")
	}
	return &out, nil
}

// fetch issues a GET and decodes the enveloped body as T, choosing the
// decoder from the response's Content-Type.
func fetch[T mediacontainer.Container](ctx context.Context, c *Client, endpoint string, accept mediacontainer.ContentType) (T, error) {
	var zero T
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", accept.MIME())
	if c.token != "" {
		req.SetHeader("X-Plex-Token", c.token)
	}
	resp, err := req.Get(endpoint)
	if err != nil {
		return zero, err
	}
	c.logResponse(resp)

	if !resp.IsSuccess() {
		return zero, responseError(resp, accept)
	}
	ct, err := contentType(resp, accept)
	if err != nil {
		return zero, err
	}
	return mediacontainer.Load[T](resp.Body(), ct)
}

func contentType(resp *resty.Response, fallback mediacontainer.ContentType) (mediacontainer.ContentType, error) {
	header := resp.Header().Get("Content-Type")
	if header == "" {
		return fallback, nil
	}
	return mediacontainer.ParseContentType(header)
}

func responseError(resp *resty.Response, fallback mediacontainer.ContentType) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode(), Status: http.StatusText(resp.StatusCode())}
	ct, err := contentType(resp, fallback)
	if err != nil {
		return statusErr
	}
	var svc *mediacontainer.ServiceError
	if errors.As(mediacontainer.LoadServiceError(resp.Body(), ct), &svc) {
		statusErr.Err = svc
	}
	return statusErr
}

func (c *Client) logResponse(resp *resty.Response) {
	c.logger.Debug("plex request",
		"method", resp.Request.Method,
		"url", resp.Request.URL,
		"status", resp.StatusCode(),
		"elapsed", resp.Time(),
		"bytes", len(resp.Body()),
	)
}

type restyLogger struct {
	c *Client
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.c.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.c.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.c.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
