// Package app builds the client layer once at startup and hands it to
// the presentation layer.
package app

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/resource"
	"github.com/naiba/gymkit/service/gymapi"
	"github.com/naiba/gymkit/service/rest"
	"github.com/naiba/gymkit/service/session"
	"github.com/naiba/gymkit/service/store"
	"github.com/naiba/gymkit/service/tenant"
)

var Version = "0.1.0"

type Options struct {
	Logger *logger.Logger
	// Registerer receives the client metrics; nil disables them.
	Registerer prometheus.Registerer
	// L10n overrides the embedded translations.
	L10n fs.FS
	// Store overrides the sqlite file named by the config.
	Store *store.Store
}

type App struct {
	Conf      *model.Config
	Log       *logger.Logger
	Localizer *i18n.Localizer
	Store     *store.Store
	Tokens    *session.TokenStore
	Tenant    *tenant.Context
	Client    *rest.Client

	Gyms        *gymapi.GymAPIService
	Auth        *gymapi.AuthAPIService
	Memberships *gymapi.MembershipAPIService
	Classes     *gymapi.ClassAPIService
	Services    *gymapi.ServiceAPIService
	Contact     *gymapi.ContactAPIService
	Home        *gymapi.HomeAPIService
}

func New(ctx context.Context, conf *model.Config, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logger.New(logger.Config{Name: "gymkit", Debug: conf.Debug})
	}

	var l10n fs.FS = resource.L10nFS
	if opts.L10n != nil {
		l10n = opts.L10n
	}
	loc, err := i18n.NewLocalizer(conf.Language, l10n)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	if !loc.Exists(conf.Language) {
		log.WithField("language", conf.Language).Warn("no translation for language, falling back to en")
	}

	kv := opts.Store
	if kv == nil {
		if kv, err = store.Open(conf.DBPath, conf.Debug); err != nil {
			return nil, err
		}
	}

	a := &App{
		Conf:      conf,
		Log:       log,
		Localizer: loc,
		Store:     kv,
		Tokens:    session.NewTokenStore(kv, log),
		Tenant:    tenant.NewContext(kv, log),
	}

	a.Client, err = rest.New(rest.Config{
		Root:       conf.APIRoot,
		Timeout:    conf.Timeout,
		Language:   conf.Language,
		UserAgent:  "gymkit/" + Version,
		Tokens:     a.Tokens,
		Localizer:  loc,
		Logger:     log,
		Registerer: opts.Registerer,
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	// 租户选择变化同步给 HTTP 客户端
	a.Tenant.OnChange(func(slug string, ok bool) {
		if ok {
			a.Client.SetTenant(slug)
			return
		}
		a.Client.ClearTenant()
	})
	conf.OnChange(func(c *model.Config) {
		lang := c.Snapshot().Language
		loc.SetLanguage(lang)
		log.WithField("language", lang).Info("config reloaded")
	})

	if err := a.Tenant.Load(ctx); err != nil {
		log.WithError(err).Warn("continuing without a selected gym")
	}

	a.Gyms = gymapi.NewGymAPIService(a.Client)
	a.Auth = gymapi.NewAuthAPIService(a.Client, a.Tokens, log)
	a.Memberships = gymapi.NewMembershipAPIService(a.Client)
	a.Classes = gymapi.NewClassAPIService(a.Client)
	a.Services = gymapi.NewServiceAPIService(a.Client)
	a.Contact = gymapi.NewContactAPIService(a.Client)
	a.Home = gymapi.NewHomeAPIService(a.Client, a.Tenant)
	return a, nil
}

// SelectGym resolves slug against the gym list and persists the choice.
func (a *App) SelectGym(ctx context.Context, slug string) (*model.Gym, error) {
	gym, err := a.Gyms.Find(ctx, slug)
	if err != nil {
		return nil, err
	}
	sel := gym.Selection()
	if err := a.Tenant.Set(ctx, &sel); err != nil {
		return nil, fmt.Errorf("save gym selection: %w", err)
	}
	return gym, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
