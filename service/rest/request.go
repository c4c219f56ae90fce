package rest

import (
	"context"
	"net/http"

	"github.com/naiba/gymkit/model"
)

type audienceKind uint8

const (
	audienceCurrent audienceKind = iota
	audienceGlobal
	audienceTenant
)

// Audience decides which base URL a call goes to. It is resolved once
// when the call starts.
type Audience struct {
	kind audienceKind
	slug string
}

// Global targets the platform root.
func Global() Audience { return Audience{kind: audienceGlobal} }

// Current targets the gym selected on the client at call time.
func Current() Audience { return Audience{kind: audienceCurrent} }

// Tenant targets an explicit gym.
func Tenant(slug string) Audience { return Audience{kind: audienceTenant, slug: slug} }

func (a Audience) String() string {
	switch a.kind {
	case audienceGlobal:
		return "global"
	case audienceTenant:
		return "tenant:" + a.slug
	default:
		return "current"
	}
}

func Get[T any](ctx context.Context, c *Client, aud Audience, path string, opts ...Option) (*model.Envelope[T], error) {
	return send[T](ctx, c, http.MethodGet, aud, path, nil, opts)
}

func Post[T any](ctx context.Context, c *Client, aud Audience, path string, body any, opts ...Option) (*model.Envelope[T], error) {
	return send[T](ctx, c, http.MethodPost, aud, path, body, opts)
}

func Put[T any](ctx context.Context, c *Client, aud Audience, path string, body any, opts ...Option) (*model.Envelope[T], error) {
	return send[T](ctx, c, http.MethodPut, aud, path, body, opts)
}

func Delete[T any](ctx context.Context, c *Client, aud Audience, path string, opts ...Option) (*model.Envelope[T], error) {
	return send[T](ctx, c, http.MethodDelete, aud, path, nil, opts)
}

func send[T any](ctx context.Context, c *Client, method string, aud Audience, path string, body any, opts []Option) (*model.Envelope[T], error) {
	req := &request{method: method, aud: aud, path: path, body: body}
	for _, opt := range opts {
		opt(req)
	}

	raw, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var env rawEnvelope
	if method == http.MethodGet {
		env, err = normalizeRead(raw)
	} else {
		env, err = normalizeWrite(raw)
	}
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("malformed response")
		return nil, c.malformedError(status, err)
	}

	out, err := decodeEnvelope[T](env)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("unexpected response shape")
		return nil, c.malformedError(status, err)
	}
	return out, nil
}
