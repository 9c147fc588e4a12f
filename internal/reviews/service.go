// Package reviews aggregates photographer reviews on top of the database,
// with an optional Redis cache in front of the rating query.
package reviews

import (
	"context"
	"time"

	"fotobook/internal/cache"
	"fotobook/internal/db"
	"fotobook/internal/events"
)

// Publisher receives review events; may be nil.
type Publisher interface {
	Publish(evType string, payload interface{})
}

// Service owns review writes and rating lookups.
type Service struct {
	db     *db.DB
	cache  *cache.RatingCache
	events Publisher
}

// NewService wires the review service. cache and events may be nil.
func NewService(database *db.DB, ratings *cache.RatingCache, ev Publisher) *Service {
	return &Service{db: database, cache: ratings, events: ev}
}

// Add stores a review and invalidates the cached aggregate.
func (s *Service) Add(ctx context.Context, userID int64, userName, photographerID string, rating int, text string) (int64, error) {
	r := &db.Review{
		UserID:         userID,
		UserName:       userName,
		PhotographerID: photographerID,
		Rating:         rating,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	id, err := s.db.AddReview(ctx, r)
	if err != nil {
		return 0, err
	}
	r.ID = id
	s.cache.Invalidate(ctx, photographerID)
	if s.events != nil {
		s.events.Publish(events.ReviewCreated, r)
	}
	return id, nil
}

// Rating returns the average rating and review count, cache first.
func (s *Service) Rating(ctx context.Context, photographerID string) (float64, int, error) {
	if avg, count, ok := s.cache.Get(ctx, photographerID); ok {
		return avg, count, nil
	}
	avg, count, err := s.db.AverageRating(ctx, photographerID)
	if err != nil {
		return 0, 0, err
	}
	s.cache.Set(ctx, photographerID, avg, count)
	return avg, count, nil
}

// List returns the photographer's reviews newest first.
func (s *Service) List(ctx context.Context, photographerID string) ([]db.Review, error) {
	return s.db.ReviewsByPhotographer(ctx, photographerID)
}
