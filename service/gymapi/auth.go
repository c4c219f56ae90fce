package gymapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jinzhu/copier"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/service/rest"
)

type AuthAPIService struct {
	client *rest.Client
	tokens TokenStore
	log    *logger.Logger
}

func NewAuthAPIService(client *rest.Client, tokens TokenStore, log *logger.Logger) *AuthAPIService {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthAPIService{client: client, tokens: tokens, log: log.Named("auth")}
}

// Login stores the issued token before returning the user.
func (s *AuthAPIService) Login(ctx context.Context, cred model.Credentials, tenantSlug ...string) (*model.User, error) {
	if slug := firstSlug(tenantSlug); slug != "" {
		cred.Gym = slug
	}
	env, err := rest.Post[model.AuthPayload](ctx, s.client, rest.Global(), "login", cred)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, env)
}

func (s *AuthAPIService) Signup(ctx context.Context, req model.SignupRequest, tenantSlug ...string) (*model.User, error) {
	if slug := firstSlug(tenantSlug); slug != "" {
		req.Gym = slug
	}
	env, err := rest.Post[model.AuthPayload](ctx, s.client, rest.Global(), "signup", req)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, env)
}

func (s *AuthAPIService) accept(ctx context.Context, env *model.Envelope[model.AuthPayload]) (*model.User, error) {
	payload, err := unwrap(s.client, env)
	if err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, model.NewAPIError(model.ErrorKindServer, http.StatusOK,
			s.client.Localizer().T(i18n.MsgMissingToken), nil)
	}
	if err := s.tokens.Set(ctx, payload.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	s.log.WithField("user", payload.User.Email).Info("signed in")
	user := payload.User
	return &user, nil
}

// Logout ends this session. The local token is cleared even if the call fails.
func (s *AuthAPIService) Logout(ctx context.Context) error {
	defer s.dropToken(ctx)
	_, err := rest.Post[any](ctx, s.client, rest.Global(), "logout/current", nil)
	return err
}

// LogoutAll ends every session of the user, this one included.
func (s *AuthAPIService) LogoutAll(ctx context.Context) error {
	defer s.dropToken(ctx)
	_, err := rest.Post[any](ctx, s.client, rest.Global(), "logout/all", nil)
	return err
}

// LogoutOthers keeps this session and the local token.
func (s *AuthAPIService) LogoutOthers(ctx context.Context) error {
	_, err := rest.Post[any](ctx, s.client, rest.Global(), "logout/others", nil)
	return err
}

func (s *AuthAPIService) dropToken(ctx context.Context) {
	if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.WithError(err).Warn("clear local token after logout failed")
	}
}

// IsAuthenticated never fails: a missing token or any profile error means false.
func (s *AuthAPIService) IsAuthenticated(ctx context.Context) bool {
	if !s.tokens.Has(ctx) {
		return false
	}
	if _, err := s.Profile(ctx); err != nil {
		s.log.WithError(err).Debug("token present but profile fetch failed")
		return false
	}
	return true
}

func (s *AuthAPIService) Profile(ctx context.Context) (*model.User, error) {
	env, err := rest.Get[model.User](ctx, s.client, s.profileAudience(), "profile")
	if err != nil {
		return nil, err
	}
	user, err := unwrap(s.client, env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthAPIService) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	env, err := rest.Put[model.User](ctx, s.client, s.profileAudience(), "profile", upd)
	if err != nil {
		return nil, err
	}
	user, err := unwrap(s.client, env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdateOf starts an update request from the current profile.
func ProfileUpdateOf(u model.User) (model.ProfileUpdate, error) {
	var upd model.ProfileUpdate
	if err := copier.Copy(&upd, &u); err != nil {
		return model.ProfileUpdate{}, err
	}
	return upd, nil
}

// profile 在选了健身房时走租户接口
func (s *AuthAPIService) profileAudience() rest.Audience {
	if slug, ok := s.client.Tenant(); ok {
		return rest.Tenant(slug)
	}
	return rest.Global()
}

func firstSlug(slugs []string) string {
	for _, s := range slugs {
		if s != "" {
			return s
		}
	}
	return ""
}
