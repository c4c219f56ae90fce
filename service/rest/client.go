// Package rest is the single choke point for calls to the gym API.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/pkg/utils"
)

// TokenSource is the part of the token store the client needs.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type Config struct {
	Root       string // {scheme}://{host}:{port}/api/v1
	Timeout    time.Duration
	Language   string
	UserAgent  string
	Tokens     TokenSource
	Localizer  *i18n.Localizer
	Logger     *logger.Logger
	Registerer prometheus.Registerer
	Transport  http.RoundTripper
}

type Client struct {
	root       string
	language   string
	httpClient *http.Client
	tokens     TokenSource
	l10n       *i18n.Localizer
	log        *logger.Logger
	tenant     atomic.Pointer[string]
}

func New(cfg Config) (*Client, error) {
	root := strings.TrimRight(strings.TrimSpace(cfg.Root), "/")
	if root == "" {
		return nil, fmt.Errorf("root URL is required")
	}
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("parse root URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("root URL %q must have scheme and host", root)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = model.DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Client{
		root:     root,
		language: cfg.Language,
		tokens:   cfg.Tokens,
		l10n:     cfg.Localizer,
		log:      log.Named("rest"),
	}

	base := cfg.Transport
	if base == nil {
		base = utils.NewTransport()
	}
	if cfg.Registerer != nil {
		m, err := newMetrics(cfg.Registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		base = m.instrument(base)
	}

	c.httpClient = utils.NewHTTPClient(timeout, &authTransport{
		next:     base,
		tokens:   cfg.Tokens,
		language: c.acceptLanguage,
		agent:    cfg.UserAgent,
		onError: func(err error) {
			c.log.WithError(err).Warn("token unavailable, sending request unauthenticated")
		},
	})
	return c, nil
}

func (c *Client) acceptLanguage() string {
	if c.l10n != nil {
		return c.l10n.Language()
	}
	if c.language != "" {
		return c.language
	}
	return model.DefaultLanguage
}

// Root ..
func (c *Client) Root() string {
	return c.root
}

// Localizer ..
func (c *Client) Localizer() *i18n.Localizer {
	return c.l10n
}

// SetTenant sets the gym that Current() calls are scoped to.
func (c *Client) SetTenant(slug string) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		c.tenant.Store(nil)
		return
	}
	c.tenant.Store(&slug)
}

func (c *Client) ClearTenant() {
	c.tenant.Store(nil)
}

func (c *Client) Tenant() (string, bool) {
	p := c.tenant.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// BaseURL resolves the base URL a call with this audience goes to.
func (c *Client) BaseURL(aud Audience) (string, error) {
	switch aud.kind {
	case audienceGlobal:
		return c.root, nil
	case audienceTenant:
		if aud.slug == "" {
			return "", model.ErrNoTenant
		}
		return c.root + "/" + url.PathEscape(aud.slug), nil
	default:
		slug, ok := c.Tenant()
		if !ok {
			return "", model.ErrNoTenant
		}
		return c.root + "/" + url.PathEscape(slug), nil
	}
}

type request struct {
	method string
	aud    Audience
	path   string
	body   any
	query  url.Values
	header http.Header
}

type Option func(*request)

func WithQuery(key, value string) Option {
	return func(r *request) {
		if r.query == nil {
			r.query = url.Values{}
		}
		r.query.Add(key, value)
	}
}

func WithHeader(key, value string) Option {
	return func(r *request) {
		if r.header == nil {
			r.header = http.Header{}
		}
		r.header.Set(key, value)
	}
}

// do sends one request and returns the raw body of a 2xx response.
// Every failure comes back as *model.APIError.
func (c *Client) do(ctx context.Context, req *request) ([]byte, int, error) {
	base, err := c.BaseURL(req.aud)
	if err != nil {
		if errors.Is(err, model.ErrNoTenant) {
			return nil, 0, model.NewAPIError(model.ErrorKindClient, 0, c.t(i18n.MsgNoTenant), err)
		}
		return nil, 0, c.clientError(err)
	}

	target := utils.JoinURL(base, req.path)
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := utils.Json.Marshal(req.body)
		if err != nil {
			return nil, 0, c.clientError(fmt.Errorf("marshal body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, 0, c.clientError(fmt.Errorf("create request: %w", err))
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	requestID, _ := uuid.GenerateUUID()
	if requestID != "" {
		httpReq.Header.Set(HeaderRequestID, requestID)
	}

	log := c.log.WithField("request_id", requestID).WithField("method", req.method).WithField("url", target)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.WithError(err).Warn("request failed without response")
		return nil, 0, model.NewAPIError(model.ErrorKindNetwork, 0, c.t(i18n.MsgNetwork), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("read response failed")
		return nil, 0, model.NewAPIError(model.ErrorKindNetwork, 0, c.t(i18n.MsgNetwork), err)
	}
	log = log.WithField("status", resp.StatusCode).WithField("elapsed", time.Since(start).String())

	if resp.StatusCode == http.StatusUnauthorized {
		// 先清掉本地 token，下一次请求不再带着过期凭证
		if c.tokens != nil {
			if err := c.tokens.Clear(ctx); err != nil {
				log.WithError(err).Error("purge token after 401 failed")
			}
		}
		log.Info("unauthorized, local token purged")
		return nil, resp.StatusCode, c.serverError(resp.StatusCode, raw)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("server returned error status")
		return nil, resp.StatusCode, c.serverError(resp.StatusCode, raw)
	}

	log.Debug("request done")
	return raw, resp.StatusCode, nil
}

func (c *Client) t(id string) string {
	return c.l10n.T(id)
}

func (c *Client) clientError(err error) *model.APIError {
	return model.NewAPIError(model.ErrorKindClient, 0,
		c.l10n.Tf(i18n.MsgInvalidRequest, map[string]any{"Reason": err.Error()}), err)
}

func (c *Client) malformedError(status int, err error) *model.APIError {
	return model.NewAPIError(model.ErrorKindMalformed, status, c.t(i18n.MsgMalformedResponse), err)
}

// serverError takes message and field errors from the body when present.
func (c *Client) serverError(status int, body []byte) *model.APIError {
	apiErr := model.NewAPIError(model.ErrorKindServer, status, "", nil)

	trimmed := bytes.TrimSpace(body)
	if gjson.ValidBytes(trimmed) && gjson.ParseBytes(trimmed).IsObject() {
		for _, key := range []string{"message", "error"} {
			if m, err := utils.GjsonGet(trimmed, key); err == nil && m.String() != "" {
				apiErr.Message = m.String()
				break
			}
		}
		if errs, err := utils.GjsonParseStringSliceMap(gjson.GetBytes(trimmed, "errors")); err == nil {
			apiErr.Errors = errs
		}
	}

	if apiErr.Message == "" {
		switch {
		case status == http.StatusUnauthorized:
			apiErr.Message = c.t(i18n.MsgUnauthorized)
		case len(apiErr.Errors) > 0:
			apiErr.Message = c.t(i18n.MsgValidation)
		default:
			apiErr.Message = c.t(i18n.MsgServerGeneric)
		}
	}
	return apiErr
}
