package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/pkg/utils"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	err     error
	cleared int
}

func (m *memTokens) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.err
}

func (m *memTokens) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func (m *memTokens) current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func newTestClient(t *testing.T, root string, tokens TokenSource) *Client {
	t.Helper()
	loc, err := i18n.NewLocalizer("en", nil)
	require.NoError(t, err)
	c, err := New(Config{Root: root, Tokens: tokens, Localizer: loc, UserAgent: "gymkit/test"})
	require.NoError(t, err)
	return c
}

func fixed(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestNew(t *testing.T) {
	cases := []struct {
		root string
		ok   bool
	}{
		{"http://127.0.0.1:8000/api/v1", true},
		{"http://127.0.0.1:8000/api/v1/", true},
		{"", false},
		{"/api/v1", false},
		{"::", false},
	}
	for _, c := range cases {
		_, err := New(Config{Root: c.root})
		assert.Equal(t, c.ok, err == nil, c.root)
	}
}

func TestReadNormalization(t *testing.T) {
	type item struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	cases := []struct {
		name    string
		body    string
		message string
		success bool
		data    []item
		kind    model.ErrorKind
	}{
		{"wrapped", `{"status":true,"message":"OK","data":[{"id":1,"name":"A"}]}`, "OK", true, []item{{1, "A"}}, 0},
		{"wrapped false", `{"status":false,"message":"nope","data":[]}`, "nope", false, []item{}, 0},
		{"bare array", `[{"id":2,"name":"B"}]`, model.MessageSuccess, true, []item{{2, "B"}}, 0},
		{"empty array", `[]`, model.MessageSuccess, true, []item{}, 0},
		{"html page", `<!DOCTYPE html><html><body>404</body></html>`, "", false, nil, model.ErrorKindMalformed},
		{"html string", `"<html><body>Whoops</body></html>"`, "", false, nil, model.ErrorKindMalformed},
		{"html deep in string", `"` + strings.Repeat(`<!-- upstream -->\n`, 30) + `<!DOCTYPE html><html><body>502</body></html>"`, "", false, nil, model.ErrorKindMalformed},
		{"plain text", `not json at all`, "", false, nil, model.ErrorKindMalformed},
		{"wrong shape", `{"status":true,"data":{"id":"x"}}`, "", false, nil, model.ErrorKindMalformed},
	}
	for _, c := range cases {
		srv := httptest.NewServer(fixed(http.StatusOK, c.body))
		client := newTestClient(t, srv.URL, nil)
		env, err := Get[[]item](context.Background(), client, Global(), "/things")
		srv.Close()

		if c.kind != 0 {
			apiErr, ok := model.AsAPIError(err)
			require.True(t, ok, c.name)
			assert.Equal(t, c.kind, apiErr.Kind, c.name)
			assert.ErrorIs(t, err, model.ErrMalformedResponse, c.name)
			assert.Equal(t, http.StatusOK, apiErr.Status, c.name)
			continue
		}
		require.NoError(t, err, c.name)
		assert.Equal(t, c.success, env.Success, c.name)
		assert.Equal(t, c.message, env.Message, c.name)
		assert.Equal(t, c.data, env.Data, c.name)
	}
}

func TestReadTextMentioningTags(t *testing.T) {
	srv := httptest.NewServer(fixed(http.StatusOK, `"Bring a towel to <body> pump class"`))
	defer srv.Close()
	client := newTestClient(t, srv.URL, nil)

	env, err := Get[string](context.Background(), client, Global(), "notice")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "Bring a towel to <body> pump class", env.Data)
}

func TestReadBareObject(t *testing.T) {
	srv := httptest.NewServer(fixed(http.StatusOK, `{"address":"1 Main St","phone":"555"}`))
	defer srv.Close()
	client := newTestClient(t, srv.URL, nil)

	env, err := Get[model.ContactInfo](context.Background(), client, Global(), "contact")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, model.MessageSuccess, env.Message)
	assert.Equal(t, "1 Main St", env.Data.Address)
}

func TestWriteNormalization(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
		success bool
		token   string
		kind    model.ErrorKind
	}{
		{"wrapped", `{"status":true,"message":"Logged in","data":{"token":"abc"}}`, "Logged in", true, "abc", 0},
		{"wrapped false", `{"status":false,"message":"Bad credentials","data":null}`, "Bad credentials", false, "", 0},
		{"no status", `{"data":{"token":"abc"}}`, "", false, "abc", 0},
		{"html", `<html><head></head></html>`, "", false, "", model.ErrorKindMalformed},
	}
	for _, c := range cases {
		srv := httptest.NewServer(fixed(http.StatusOK, c.body))
		client := newTestClient(t, srv.URL, nil)
		env, err := Post[model.AuthPayload](context.Background(), client, Global(), "login", model.Credentials{Email: "a@b.c"})
		srv.Close()

		if c.kind != 0 {
			assert.ErrorIs(t, err, model.ErrMalformedResponse, c.name)
			continue
		}
		require.NoError(t, err, c.name)
		assert.Equal(t, c.success, env.Success, c.name)
		assert.Equal(t, c.message, env.Message, c.name)
		assert.Equal(t, c.token, env.Data.Token, c.name)
	}
}

func TestHeadersAndAuth(t *testing.T) {
	var got http.Header
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		io.WriteString(w, `{"status":true,"message":"ok","data":null}`)
	}))
	defer srv.Close()

	tokens := &memTokens{}
	client := newTestClient(t, srv.URL, tokens)
	ctx := context.Background()

	_, err := Get[any](ctx, client, Global(), "/", WithHeader("X-Extra", "1"))
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "en", got.Get("Accept-Language"))
	assert.Equal(t, "gymkit/test", got.Get("User-Agent"))
	assert.Equal(t, "1", got.Get("X-Extra"))
	assert.NotEmpty(t, got.Get(HeaderRequestID))
	assert.Empty(t, got.Get("Authorization"))

	tokens.token = "secret-token"
	_, err = Put[any](ctx, client, Global(), "profile", map[string]string{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	assert.JSONEq(t, `{"name":"Ann"}`, body)

	// 读 token 出错时按未登录发送
	tokens.token, tokens.err = "", errors.New("disk gone")
	_, err = Get[any](ctx, client, Global(), "/")
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestUnauthorizedPurgesToken(t *testing.T) {
	srv := httptest.NewServer(fixed(http.StatusUnauthorized, `{"message":"Unauthenticated."}`))
	defer srv.Close()

	tokens := &memTokens{token: "expired"}
	client := newTestClient(t, srv.URL, tokens)

	_, err := Get[model.User](context.Background(), client, Global(), "profile")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.ErrorIs(t, err, model.ErrServer)
	assert.Empty(t, tokens.current())
	assert.Equal(t, 1, tokens.cleared)

	apiErr, _ := model.AsAPIError(err)
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestServerError(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		message string
		errors  map[string][]string
	}{
		{http.StatusUnprocessableEntity, `{"message":"The given data was invalid.","errors":{"email":["The email field is required."]}}`,
			"The given data was invalid.", map[string][]string{"email": {"The email field is required."}}},
		{http.StatusUnprocessableEntity, `{"errors":{"email":"taken"}}`,
			"Please correct the highlighted fields.", map[string][]string{"email": {"taken"}}},
		{http.StatusBadRequest, `{"error":"bad gym"}`, "bad gym", nil},
		{http.StatusInternalServerError, `<html><body>Server Error</body></html>`, "Something went wrong. Please try again later.", nil},
		{http.StatusNotFound, ``, "Something went wrong. Please try again later.", nil},
	}
	for _, c := range cases {
		srv := httptest.NewServer(fixed(c.status, c.body))
		client := newTestClient(t, srv.URL, nil)
		_, err := Post[any](context.Background(), client, Global(), "signup", map[string]string{})
		srv.Close()

		apiErr, ok := model.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrorKindServer, apiErr.Kind)
		assert.Equal(t, c.status, apiErr.Status)
		assert.Equal(t, c.message, apiErr.Message)
		assert.Equal(t, c.errors, apiErr.Errors)
		assert.False(t, errors.Is(err, model.ErrUnauthorized))
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(fixed(http.StatusOK, `[]`))
	root := srv.URL
	srv.Close()

	client := newTestClient(t, root, nil)
	_, err := Get[[]model.Gym](context.Background(), client, Global(), "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)

	apiErr, _ := model.AsAPIError(err)
	assert.False(t, apiErr.Responded())
	assert.Equal(t, "Network error. Please check your connection and try again.", apiErr.Message)

	raw, err := utils.Json.Marshal(apiErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Network error. Please check your connection and try again.","status":false}`, string(raw))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{Root: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = Get[any](context.Background(), c, Global(), "/slow")
	assert.ErrorIs(t, err, model.ErrNetwork)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAudience(t *testing.T) {
	client := newTestClient(t, "http://gyms.test/api/v1/", nil)

	root, err := client.BaseURL(Global())
	require.NoError(t, err)
	assert.Equal(t, "http://gyms.test/api/v1", root)

	_, err = client.BaseURL(Current())
	assert.ErrorIs(t, err, model.ErrNoTenant)

	client.SetTenant("acme")
	scoped, err := client.BaseURL(Current())
	require.NoError(t, err)
	assert.Equal(t, "http://gyms.test/api/v1/acme", scoped)

	other, err := client.BaseURL(Tenant("zen"))
	require.NoError(t, err)
	assert.Equal(t, "http://gyms.test/api/v1/zen", other)

	// 全局调用不改变当前租户
	root, _ = client.BaseURL(Global())
	assert.Equal(t, "http://gyms.test/api/v1", root)
	slug, ok := client.Tenant()
	assert.True(t, ok)
	assert.Equal(t, "acme", slug)

	client.ClearTenant()
	_, ok = client.Tenant()
	assert.False(t, ok)
	_, err = client.BaseURL(Tenant(""))
	assert.ErrorIs(t, err, model.ErrNoTenant)
}

func TestScopedCallWithoutTenant(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	_, err := Get[[]model.Membership](context.Background(), client, Current(), "memberships")
	assert.ErrorIs(t, err, model.ErrClient)
	assert.ErrorIs(t, err, model.ErrNoTenant)
	assert.Equal(t, 0, hits)

	apiErr, _ := model.AsAPIError(err)
	assert.Equal(t, "Please select a gym first.", apiErr.Message)
	assert.Equal(t, 0, apiErr.Status)
}

func TestMarshalFailureIsClientError(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", nil)
	_, err := Post[any](context.Background(), client, Global(), "contact", map[string]any{"bad": make(chan int)})
	assert.ErrorIs(t, err, model.ErrClient)
	apiErr, _ := model.AsAPIError(err)
	assert.True(t, strings.HasPrefix(apiErr.Message, "The request could not be prepared: "))
}

func TestConcurrentAudiences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	client.SetTenant("acme")

	type echo struct {
		Path string `json:"path"`
	}
	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			env, err := Get[echo](context.Background(), client, Current(), "classes")
			if err == nil && env.Data.Path != "/acme/classes" {
				err = fmt.Errorf("scoped call hit %s", env.Data.Path)
			}
			errs <- err
		}()
		go func() {
			defer wg.Done()
			env, err := Get[echo](context.Background(), client, Global(), "gyms")
			if err == nil && env.Data.Path != "/gyms" {
				err = fmt.Errorf("global call hit %s", env.Data.Path)
			}
			errs <- err
		}()
		go func() {
			defer wg.Done()
			env, err := Get[echo](context.Background(), client, Tenant("zen"), "services")
			if err == nil && env.Data.Path != "/zen/services" {
				err = fmt.Errorf("tenant call hit %s", env.Data.Path)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestQueryAndMetrics(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c, err := New(Config{Root: srv.URL, Registerer: reg})
	require.NoError(t, err)
	// 第二个客户端复用已注册的指标
	_, err = New(Config{Root: srv.URL, Registerer: reg})
	require.NoError(t, err)

	_, err = Get[[]model.Gym](context.Background(), c, Global(), "/", WithQuery("page", "2"))
	require.NoError(t, err)
	assert.Equal(t, "page=2", query)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gymkit_client_requests_total"])
	assert.True(t, names["gymkit_client_request_duration_seconds"])
}
