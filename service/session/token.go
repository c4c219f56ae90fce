// Package session persists the single bearer token of this device.
package session

import (
	"context"
	"strings"

	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/pkg/utils"
	"github.com/naiba/gymkit/service/store"
)

const TokenKey = "auth_token"

type TokenStore struct {
	kv  store.KV
	log *logger.Logger
}

func NewTokenStore(kv store.KV, log *logger.Logger) *TokenStore {
	if log == nil {
		log = logger.Discard()
	}
	return &TokenStore{kv: kv, log: log.Named("session")}
}

// Get returns "" when no token is stored. A storage error is returned
// alongside "" so callers may treat it as absent.
func (s *TokenStore) Get(ctx context.Context) (string, error) {
	token, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.log.WithError(err).Warn("read token failed")
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Set 持久化 token，失败时记录日志并把结果交给调用方
func (s *TokenStore) Set(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		s.log.WithError(err).Error("persist token failed")
		return err
	}
	s.log.WithField("token", utils.Mask(token)).Debug("token stored")
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		s.log.WithError(err).Error("clear token failed")
		return err
	}
	s.log.Debug("token cleared")
	return nil
}

// Has reports whether a token is stored; read errors count as absent.
func (s *TokenStore) Has(ctx context.Context) bool {
	token, _ := s.Get(ctx)
	return token != ""
}
