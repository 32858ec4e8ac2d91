package reserve

import (
	"context"
	"fmt"

	"lending/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache caches reserves by id, cached values are cloned on read
func Cache(store core.IReserveStore) core.IReserveStore {
	return &cacheReserveStore{
		IReserveStore: store,
		cache:         gcache.New(2048).LRU().Build(),
		sf:            &singleflight.Group{},
	}
}

type cacheReserveStore struct {
	core.IReserveStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheReserveStore) Save(ctx context.Context, r *core.Reserve) error {
	if err := s.IReserveStore.Save(ctx, r); err != nil {
		return err
	}

	s.cache.Remove(s.key(r.ID))
	return nil
}

func (s *cacheReserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	key := s.key(id)
	if v, err := s.cache.Get(key); err == nil {
		if r, ok := v.(*core.Reserve); ok {
			return r.Clone(), nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		r, err := s.IReserveStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, r.Clone())
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Reserve).Clone(), nil
}

// Update drop the cached reserve, the enclosing transaction may still roll back
func (s *cacheReserveStore) Update(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	s.cache.Remove(s.key(r.ID))
	return s.IReserveStore.Update(ctx, tx, r)
}

func (s *cacheReserveStore) key(id string) string {
	return fmt.Sprintf("reserve:id:%s", id)
}
