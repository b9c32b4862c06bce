package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
	infraprom "github.com/linkhub-app/linkhub/internal/infra/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	resolveCachePrefix = "linkhub:resolve:"
	resolveCacheTTL    = 5 * time.Minute

	// Sized for growth; false positives only cost a DB round trip.
	bloomExpectedCodes = 1_000_000
	bloomFalsePositive = 0.01
)

// LinkResolver maps a short code to its owning account and link record. The
// lookup itself is pure; the bloom filter and Redis cache only shortcut it.
type LinkResolver struct {
	accounts repository.AccountRepository
	cache    *redis.Client
	logger   *zap.Logger

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewLinkResolver builds a resolver. cache may be nil; resolution then always
// reaches the repository.
func NewLinkResolver(accounts repository.AccountRepository, cache *redis.Client, logger *zap.Logger) *LinkResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkResolver{
		accounts: accounts,
		cache:    cache,
		logger:   logger,
		filter:   bloom.NewWithEstimates(bloomExpectedCodes, bloomFalsePositive),
	}
}

// Warm seeds the bloom filter with every known short code. Called once at
// startup; resolution works without it but loses the negative fast path.
func (r *LinkResolver) Warm(ctx context.Context) error {
	codes, err := r.accounts.ListShortCodes(ctx)
	if err != nil {
		return fmt.Errorf("warm resolver: %w", err)
	}

	r.mu.Lock()
	for _, code := range codes {
		r.filter.AddString(code)
	}
	r.mu.Unlock()

	r.logger.Info("resolver warmed", zap.Int("short_codes", len(codes)))
	return nil
}

// AddCode registers a newly minted short code with the negative filter.
func (r *LinkResolver) AddCode(code string) {
	r.mu.Lock()
	r.filter.AddString(code)
	r.mu.Unlock()
}

type cachedResolution struct {
	AccountID string     `json:"account_id"`
	Link      model.Link `json:"link"`
}

// Resolve returns the account and link owning the short code, or
// repository.ErrLinkNotFound. Lookups are exact and case-sensitive.
func (r *LinkResolver) Resolve(ctx context.Context, code string) (*model.Account, *model.Link, error) {
	if code == "" {
		return nil, nil, repository.ErrLinkNotFound
	}

	r.mu.RLock()
	known := r.filter.TestString(code)
	r.mu.RUnlock()
	if !known {
		// Definite miss; the filter has no false negatives.
		infraprom.ResolveMisses.Inc()
		return nil, nil, repository.ErrLinkNotFound
	}

	if account, link, ok := r.fromCache(ctx, code); ok {
		return account, link, nil
	}

	account, link, err := r.accounts.GetByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			infraprom.ResolveMisses.Inc()
		}
		return nil, nil, err
	}

	r.toCache(ctx, code, account, link)
	return account, link, nil
}

func (r *LinkResolver) fromCache(ctx context.Context, code string) (*model.Account, *model.Link, bool) {
	if r.cache == nil {
		return nil, nil, false
	}

	raw, err := r.cache.Get(ctx, resolveCachePrefix+code).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("resolve cache read failed", zap.Error(err))
		}
		return nil, nil, false
	}

	var cached cachedResolution
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, nil, false
	}

	return &model.Account{ID: cached.AccountID}, &cached.Link, true
}

func (r *LinkResolver) toCache(ctx context.Context, code string, account *model.Account, link *model.Link) {
	if r.cache == nil {
		return
	}

	raw, err := json.Marshal(cachedResolution{AccountID: account.ID, Link: *link})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, resolveCachePrefix+code, raw, resolveCacheTTL).Err(); err != nil {
		r.logger.Warn("resolve cache write failed", zap.Error(err))
	}
}
