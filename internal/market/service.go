package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	pkgredis "github.com/talgatbekov/bazarline-backend/pkg/redis"
)

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MarketKey(userID string) string
}

// Service persists the shopper's market selection across sessions. The
// selection drives which address fields a checkout requires and which
// orders a manager sees.
type Service struct {
	kv kv
}

func NewService(client *pkgredis.Client) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Service{kv: client}, nil
}

// Get returns the persisted market, defaulting to domestic when the
// shopper has never picked one or the stored value is stale.
func (s *Service) Get(ctx context.Context, userID string) (enums.Market, error) {
	raw, err := s.kv.Get(ctx, s.kv.MarketKey(userID))
	if errors.Is(err, pkgredis.Nil) {
		return enums.MarketDomestic, nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading market selection")
	}

	market, err := enums.ParseMarket(raw)
	if err != nil {
		return enums.MarketDomestic, nil
	}
	return market, nil
}

// Set stores the shopper's market selection without expiry.
func (s *Service) Set(ctx context.Context, userID string, market enums.Market) error {
	if !market.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown market %q", market))
	}
	if err := s.kv.Set(ctx, s.kv.MarketKey(userID), market.String(), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing market selection")
	}
	return nil
}
