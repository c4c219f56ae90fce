package gymapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/gymstub"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/service/rest"
	"github.com/naiba/gymkit/service/session"
	"github.com/naiba/gymkit/service/store"
)

type fixture struct {
	stub   *gymstub.Server
	srv    *httptest.Server
	client *rest.Client
	tokens *session.TokenStore
	auth   *AuthAPIService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stub := gymstub.New(gymstub.Config{Seed: true})
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	kv, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	tokens := session.NewTokenStore(kv, nil)

	loc, err := i18n.NewLocalizer("en", nil)
	require.NoError(t, err)
	client, err := rest.New(rest.Config{Root: srv.URL + gymstub.APIPrefix, Tokens: tokens, Localizer: loc})
	require.NoError(t, err)

	return &fixture{
		stub:   stub,
		srv:    srv,
		client: client,
		tokens: tokens,
		auth:   NewAuthAPIService(client, tokens, nil),
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.auth.Login(context.Background(), model.Credentials{Email: gymstub.DemoEmail, Password: gymstub.DemoPassword})
	require.NoError(t, err)
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	token, err := f.tokens.Get(context.Background())
	require.NoError(t, err)
	return token
}

func TestLoginStoresToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.False(t, f.auth.IsAuthenticated(ctx))

	user, err := f.auth.Login(ctx, model.Credentials{Email: gymstub.DemoEmail, Password: gymstub.DemoPassword}, "acme")
	require.NoError(t, err)
	assert.Equal(t, gymstub.DemoEmail, user.Email)
	assert.Equal(t, "acme", user.Gym)
	assert.NotEmpty(t, f.token(t))
	assert.True(t, f.auth.IsAuthenticated(ctx))

	profile, err := f.auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Member", profile.Name)
}

func TestLoginRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, model.Credentials{Email: gymstub.DemoEmail, Password: "wrong-password"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrServer)
	apiErr, _ := model.AsAPIError(err)
	assert.Equal(t, "These credentials do not match our records.", apiErr.Message)
	assert.Empty(t, f.token(t))

	_, err = f.auth.Login(ctx, model.Credentials{Email: gymstub.DemoEmail, Password: gymstub.DemoPassword}, "nowhere")
	apiErr, ok := model.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, []string{"The selected gym is invalid."}, apiErr.FieldErrors("gym"))
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := model.SignupRequest{
		Name:                 "Ann Lee",
		Email:                "ann@example.test",
		Password:             "long-enough",
		PasswordConfirmation: "long-enough",
	}
	user, err := f.auth.Signup(ctx, req, "zen")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", user.Name)
	assert.NotEmpty(t, f.token(t))

	_, err = f.auth.Signup(ctx, req)
	apiErr, ok := model.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, []string{"The email has already been taken."}, apiErr.FieldErrors("email"))
}

func TestLogoutClearsToken(t *testing.T) {
	cases := []struct {
		name   string
		logout func(*AuthAPIService, context.Context) error
	}{
		{"current", (*AuthAPIService).Logout},
		{"all", (*AuthAPIService).LogoutAll},
	}
	for _, c := range cases {
		f := newFixture(t)
		ctx := context.Background()

		f.login(t)
		require.NoError(t, c.logout(f.auth, ctx), c.name)
		assert.Empty(t, f.token(t), c.name)
		assert.Equal(t, 0, f.stub.Sessions(gymstub.DemoEmail), c.name)

		// 服务端不可达时本地 token 仍然清掉
		f.login(t)
		f.srv.Close()
		err := c.logout(f.auth, ctx)
		assert.ErrorIs(t, err, model.ErrNetwork, c.name)
		assert.Empty(t, f.token(t), c.name)
	}
}

func TestLogoutOthersKeepsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.login(t)
	f.login(t)
	require.Equal(t, 2, f.stub.Sessions(gymstub.DemoEmail))
	token := f.token(t)

	require.NoError(t, f.auth.LogoutOthers(ctx))
	assert.Equal(t, token, f.token(t))
	assert.Equal(t, 1, f.stub.Sessions(gymstub.DemoEmail))
	assert.True(t, f.auth.IsAuthenticated(ctx))

	f.srv.Close()
	assert.ErrorIs(t, f.auth.LogoutOthers(ctx), model.ErrNetwork)
	assert.Equal(t, token, f.token(t))
}

func TestStaleTokenIsNotAuthenticated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tokens.Set(ctx, "stale.token.value"))
	assert.False(t, f.auth.IsAuthenticated(ctx))
	assert.Empty(t, f.token(t), "401 purges the token")
}

func TestGlobalCallKeepsTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	classes := NewClassAPIService(f.client)

	f.login(t)
	f.client.SetTenant("acme")
	before, err := classes.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 2)

	require.NoError(t, f.auth.Logout(ctx))

	after, err := classes.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	base, err := f.client.BaseURL(rest.Current())
	require.NoError(t, err)
	assert.Equal(t, f.srv.URL+gymstub.APIPrefix+"/acme", base)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	memberships := NewMembershipAPIService(f.client)
	classes := NewClassAPIService(f.client)
	services := NewServiceAPIService(f.client)

	_, err := memberships.List(ctx)
	assert.ErrorIs(t, err, model.ErrNoTenant)
	assert.ErrorIs(t, err, model.ErrClient)

	f.client.SetTenant("acme")

	ms, err := memberships.List(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	m, err := memberships.Get(ctx, ms[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Annual", m.Name)

	cl, err := classes.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "HIIT", cl.Name)

	svcs, err := services.List(ctx)
	require.NoError(t, err)
	require.Len(t, svcs, 1)
	svc, err := services.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Personal training", svc.Name)

	zen, err := classes.ListFor(ctx, "zen")
	require.NoError(t, err)
	require.Len(t, zen, 1)
	assert.Equal(t, "Vinyasa", zen[0].Name)

	_, err = services.Get(ctx, 42)
	apiErr, ok := model.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)

	// 同一个 GET 两次结果一致
	again, err := memberships.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, ms, again)
}

func TestMisconfiguredEndpoint(t *testing.T) {
	f := newFixture(t)
	f.stub.Misconfigure("/acme/classes")
	f.client.SetTenant("acme")

	_, err := NewClassAPIService(f.client).List(context.Background())
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
	apiErr, _ := model.AsAPIError(err)
	assert.Equal(t, "The server returned an unexpected response. The endpoint may be misconfigured.", apiErr.Message)
}

func TestGyms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gyms := NewGymAPIService(f.client)

	f.client.SetTenant("acme")
	list, err := gyms.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	zen, err := gyms.Find(ctx, "zen")
	require.NoError(t, err)
	assert.Equal(t, "Zen Yoga Studio", zen.Name)

	_, err = gyms.Find(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrGymNotFound)
}

func TestContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contact := NewContactAPIService(f.client)
	f.client.SetTenant("zen")

	info, err := contact.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "namaste@zen.test", info.Email)

	_, err = contact.Submit(ctx, model.ContactMessage{Name: "Ann", Email: "not-an-email"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrClient)
	apiErr, _ := model.AsAPIError(err)
	assert.False(t, apiErr.Responded())
	assert.NotEmpty(t, apiErr.FieldErrors("email"))
	assert.NotEmpty(t, apiErr.FieldErrors("message"))
	assert.Empty(t, f.stub.Inbox("zen"))

	msg, err := contact.Submit(ctx, model.ContactMessage{Name: "Ann", Email: "ann@example.test", Message: "Do you have parking?"})
	require.NoError(t, err)
	assert.Contains(t, msg, "Thank you")
	inbox := f.stub.Inbox("zen")
	require.Len(t, inbox, 1)
	assert.Equal(t, "Do you have parking?", inbox[0].Message)
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	current, err := f.auth.Profile(ctx)
	require.NoError(t, err)
	upd, err := ProfileUpdateOf(*current)
	require.NoError(t, err)
	assert.Equal(t, current.Email, upd.Email)

	upd.Name = "Renamed Member"
	user, err := f.auth.UpdateProfile(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Member", user.Name)

	f.client.SetTenant("acme")
	scoped, err := f.auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", scoped.Gym)
	assert.Equal(t, "Renamed Member", scoped.Name)
}

type staticSelection model.TenantSelection

func (s staticSelection) Get() (model.TenantSelection, bool) { return model.TenantSelection(s), true }

func TestHome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := NewHomeAPIService(f.client, staticSelection{ID: 1, Slug: "acme", Name: "Acme Fitness"})

	_, err := home.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNoTenant)

	f.client.SetTenant("acme")
	h, err := home.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, h.Gym)
	assert.Equal(t, "Acme Fitness", h.Gym.Name)
	assert.Len(t, h.Memberships, 2)
	assert.Len(t, h.Classes, 2)
	assert.Len(t, h.Services, 1)

	f.stub.Misconfigure("acme/services")
	_, err = home.Load(ctx)
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}
