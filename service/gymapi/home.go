package gymapi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/service/rest"
)

type HomeAPIService struct {
	client      *rest.Client
	selection   SelectionSource
	memberships *MembershipAPIService
	classes     *ClassAPIService
	services    *ServiceAPIService
}

// NewHomeAPIService accepts a nil selection; Home.Gym then only carries the slug.
func NewHomeAPIService(client *rest.Client, selection SelectionSource) *HomeAPIService {
	return &HomeAPIService{
		client:      client,
		selection:   selection,
		memberships: NewMembershipAPIService(client),
		classes:     NewClassAPIService(client),
		services:    NewServiceAPIService(client),
	}
}

// Load fetches the three lists of the selected gym concurrently.
// The first failure cancels the other requests.
func (s *HomeAPIService) Load(ctx context.Context) (*model.Home, error) {
	// 只解析一次当前租户，三个请求打到同一个健身房
	aud := rest.Current()
	home := &model.Home{}
	if slug, ok := s.client.Tenant(); ok {
		aud = rest.Tenant(slug)
		home.Gym = &model.TenantSelection{Slug: slug}
		if s.selection != nil {
			if sel, ok := s.selection.Get(); ok && sel.Slug == slug {
				home.Gym = &sel
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		home.Memberships, err = s.memberships.list(gctx, aud)
		return err
	})
	g.Go(func() (err error) {
		home.Classes, err = s.classes.list(gctx, aud)
		return err
	})
	g.Go(func() (err error) {
		home.Services, err = s.services.list(gctx, aud)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}
