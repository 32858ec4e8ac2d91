package market

import (
	"context"
	"sort"

	"lending/core"
)

// markets are part of the config, they are never written at runtime
type marketStore struct {
	markets map[string]*core.Market
}

// New new market store backed by the configured markets
func New(markets []core.Market) core.IMarketStore {
	s := &marketStore{markets: make(map[string]*core.Market, len(markets))}
	for idx := range markets {
		m := markets[idx]
		s.markets[m.ID] = &m
	}

	return s
}

func (s *marketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return nil, core.ErrMarketNotFound
	}

	c := *m
	return &c, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	markets := make([]*core.Market, 0, len(s.markets))
	for _, m := range s.markets {
		c := *m
		markets = append(markets, &c)
	}

	sort.Slice(markets, func(i, j int) bool {
		return markets[i].ID < markets[j].ID
	})

	return markets, nil
}
