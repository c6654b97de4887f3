package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/oidc"
)

// ExchangeService fronts the OIDC client with a consumed-code cache so a
// double-submitted callback (browser refresh, SPA re-render) replays the
// prior result instead of burning the single-use code upstream.
type ExchangeService struct {
	client *oidc.Client
	cache  oidc.CodeCache
}

func NewExchangeService(client *oidc.Client, cache oidc.CodeCache) *ExchangeService {
	return &ExchangeService{client: client, cache: cache}
}

func (s *ExchangeService) Exchange(ctx context.Context, code string) (*oidc.Result, error) {
	if cached, ok := s.cache.Get(ctx, code); ok {
		log.Info().Msg("authorization code already consumed, returning cached result")
		return cached, nil
	}

	result, err := s.client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, code, result)
	return result, nil
}
