package gymapi

import (
	"context"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/i18n"
	"github.com/naiba/gymkit/service/rest"
)

type ContactAPIService struct {
	client *rest.Client
}

func NewContactAPIService(client *rest.Client) *ContactAPIService {
	return &ContactAPIService{client: client}
}

func (s *ContactAPIService) Info(ctx context.Context) (*model.ContactInfo, error) {
	env, err := rest.Get[model.ContactInfo](ctx, s.client, rest.Current(), "contact")
	if err != nil {
		return nil, err
	}
	info, err := unwrap(s.client, env)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Submit 先在本地校验必填项，不合法时不发请求
func (s *ContactAPIService) Submit(ctx context.Context, msg model.ContactMessage) (string, error) {
	if errs := msg.Validate(); errs != nil {
		apiErr := model.NewAPIError(model.ErrorKindClient, 0, s.client.Localizer().T(i18n.MsgValidation), nil)
		apiErr.Errors = errs
		return "", apiErr
	}
	env, err := rest.Post[any](ctx, s.client, rest.Current(), "contact", msg)
	if err != nil {
		return "", err
	}
	if _, err := unwrap(s.client, env); err != nil {
		return "", err
	}
	return env.Message, nil
}
