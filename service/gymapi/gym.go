package gymapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/service/rest"
)

var ErrGymNotFound = errors.New("gym not found")

type GymAPIService struct {
	client *rest.Client
}

func NewGymAPIService(client *rest.Client) *GymAPIService {
	return &GymAPIService{client: client}
}

// List 租户列表，不依赖当前选择
func (s *GymAPIService) List(ctx context.Context) ([]model.Gym, error) {
	env, err := rest.Get[[]model.Gym](ctx, s.client, rest.Global(), "/")
	if err != nil {
		return nil, err
	}
	return unwrap(s.client, env)
}

// Find looks a gym up by slug in the tenant list.
func (s *GymAPIService) Find(ctx context.Context, slug string) (*model.Gym, error) {
	gyms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range gyms {
		if gyms[i].Slug == slug {
			return &gyms[i], nil
		}
	}
	return nil, fmt.Errorf("gym %q: %w", slug, ErrGymNotFound)
}
