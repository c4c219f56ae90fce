// Package gymapi has one façade per resource of the gym API. Each façade
// only fixes a path and an audience; the rest client does the work.
package gymapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/service/rest"
)

// TokenStore ..
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context) bool
}

// SelectionSource reports the gym selected on this device.
type SelectionSource interface {
	Get() (model.TenantSelection, bool)
}

// unwrap turns a 2xx answer that carries status false into a server error.
func unwrap[T any](c *rest.Client, env *model.Envelope[T]) (T, error) {
	if !env.Success {
		var zero T
		msg := env.Message
		if msg == "" {
			msg = c.Localizer().T(i18n.MsgServerGeneric)
		}
		return zero, model.NewAPIError(model.ErrorKindServer, http.StatusOK, msg, nil)
	}
	return env.Data, nil
}

// catalog is a read-only tenant resource with list and get-by-id.
type catalog[T any] struct {
	client *rest.Client
	path   string
}

// List returns the resources of the selected gym.
func (c catalog[T]) List(ctx context.Context) ([]T, error) {
	return c.list(ctx, rest.Current())
}

// ListFor returns the resources of a gym other than the selected one.
func (c catalog[T]) ListFor(ctx context.Context, slug string) ([]T, error) {
	return c.list(ctx, rest.Tenant(slug))
}

func (c catalog[T]) Get(ctx context.Context, id uint64) (*T, error) {
	env, err := rest.Get[T](ctx, c.client, rest.Current(), c.path+"/"+strconv.FormatUint(id, 10))
	if err != nil {
		return nil, err
	}
	v, err := unwrap(c.client, env)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c catalog[T]) list(ctx context.Context, aud rest.Audience) ([]T, error) {
	env, err := rest.Get[[]T](ctx, c.client, aud, c.path)
	if err != nil {
		return nil, err
	}
	list, err := unwrap(c.client, env)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

type MembershipAPIService struct {
	catalog[model.Membership]
}

func NewMembershipAPIService(client *rest.Client) *MembershipAPIService {
	return &MembershipAPIService{catalog[model.Membership]{client: client, path: "memberships"}}
}

type ClassAPIService struct {
	catalog[model.GymClass]
}

func NewClassAPIService(client *rest.Client) *ClassAPIService {
	return &ClassAPIService{catalog[model.GymClass]{client: client, path: "classes"}}
}

type ServiceAPIService struct {
	catalog[model.GymService]
}

func NewServiceAPIService(client *rest.Client) *ServiceAPIService {
	return &ServiceAPIService{catalog[model.GymService]{client: client, path: "services"}}
}
