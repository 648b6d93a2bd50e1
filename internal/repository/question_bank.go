package repository

import (
	"context"
	"log"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/cache"
)

type QuestionSource interface {
	QuestionsForRung(ctx context.Context, rung int) ([]*models.Question, error)
}

// QuestionBank picks questions for a rung uniformly at random. Rung pools
// are cached when a cache is configured.
type QuestionBank struct {
	source QuestionSource
	cache  Cache
	ttl    time.Duration
	pick   func(n int) int
}

func NewQuestionBank(source QuestionSource, c Cache, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		source: source,
		cache:  c,
		ttl:    ttl,
		pick:   rand.IntN,
	}
}

// FetchQuestion returns a random question on rung whose id is not in
// excludeIDs, or nil when every question on the rung is excluded.
func (b *QuestionBank) FetchQuestion(ctx context.Context, rung int, excludeIDs []string) (*models.Question, error) {
	pool, err := b.pool(ctx, rung)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.Question, 0, len(pool))
	for _, q := range pool {
		if !slices.Contains(excludeIDs, q.ID) {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	q := *candidates[b.pick(len(candidates))]
	q.Options = slices.Clone(q.Options)
	q.ImageRefs = slices.Clone(q.ImageRefs)
	return &q, nil
}

// Invalidate drops the cached pool for rung.
func (b *QuestionBank) Invalidate(ctx context.Context, rung int) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Delete(ctx, cache.QuestionPoolKey(rung)); err != nil {
		log.Printf("Failed to invalidate question cache for rung %d: %v", rung, err)
	}
}

func (b *QuestionBank) pool(ctx context.Context, rung int) ([]*models.Question, error) {
	key := cache.QuestionPoolKey(rung)

	if b.cache != nil {
		var cached []*models.Question
		found, err := b.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Printf("Failed to read question cache for rung %d: %v", rung, err)
		} else if found {
			return cached, nil
		}
	}

	pool, err := b.source.QuestionsForRung(ctx, rung)
	if err != nil {
		return nil, err
	}

	if b.cache != nil && len(pool) > 0 {
		if err := b.cache.SetJSON(ctx, key, pool, b.ttl); err != nil {
			log.Printf("Failed to cache questions for rung %d: %v", rung, err)
		}
	}
	return pool, nil
}
