package db

import (
	"context"
	"fmt"
	"time"
)

// Review is a user's rating of a photographer.
type Review struct {
	ID             int64
	UserID         int64
	UserName       string
	PhotographerID string
	Rating         int // 1..5
	Text           string
	CreatedAt      time.Time
}

// AddReview persists a review and returns its id.
func (db *DB) AddReview(ctx context.Context, r *Review) (int64, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return 0, fmt.Errorf("rating out of range: %d", r.Rating)
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO reviews (user_id, user_name, photographer_id, rating, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.UserName, r.PhotographerID, r.Rating, r.Text, r.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}
	return res.LastInsertId()
}

// ReviewsByPhotographer returns reviews newest first.
func (db *DB) ReviewsByPhotographer(ctx context.Context, photographerID string) ([]Review, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, user_name, photographer_id, rating, text, created_at
		FROM reviews WHERE photographer_id = ? ORDER BY created_at DESC`,
		photographerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.PhotographerID, &r.Rating, &r.Text, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AverageRating returns the mean rating and review count for a
// photographer. A photographer without reviews yields (0, 0, nil).
func (db *DB) AverageRating(ctx context.Context, photographerID string) (float64, int, error) {
	var avg float64
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE photographer_id = ?`,
		photographerID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
