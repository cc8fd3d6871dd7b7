package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	pkgredis "github.com/talgatbekov/bazarline-backend/pkg/redis"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// Store reads a shopper's cart from the external cart store. The checkout
// core only reads the cart; its single write is the clear issued after a
// successful order submission.
type Store struct {
	kv kv
}

func NewStore(client *pkgredis.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Store{kv: client}, nil
}

// Fetch returns the shopper's cart lines. A missing key is an empty cart,
// not an error.
func (s *Store) Fetch(ctx context.Context, userID string) ([]types.CartLineItem, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID))
	if errors.Is(err, pkgredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching cart")
	}

	var items []types.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cart payload")
	}
	return items, nil
}

// Clear removes the shopper's cart. Called exactly once, after order
// creation has reported success.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}
