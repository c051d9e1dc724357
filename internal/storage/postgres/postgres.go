// Package postgres stores per-room settings that seed a room when it is
// created.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"undercover/internal/domain"
)

// Store reads and writes room settings
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url and verifies the connection
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases every pooled connection
func (s *Store) Close() {
	s.pool.Close()
}

// RoomSettings returns the stored settings for code, or nil when the room has
// none.
func (s *Store) RoomSettings(ctx context.Context, code string) (*domain.Settings, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT difficulty, total_rounds, response_time_seconds, voting_time_seconds, custom_word_pairs
		FROM room_settings
		WHERE room_code = $1`, code)

	var (
		settings   domain.Settings
		difficulty string
		pairs      []domain.WordPair
	)
	err := row.Scan(&difficulty, &settings.TotalRounds, &settings.ResponseTimeSeconds, &settings.VotingTimeSeconds, &pairs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query room settings %s: %w", code, err)
	}

	settings.Difficulty = domain.Difficulty(difficulty)
	if len(pairs) > 0 {
		settings.CustomWordPairs = pairs
	}
	return &settings, nil
}

// SaveRoomSettings validates settings and stores them for code, replacing
// any previous row.
func (s *Store) SaveRoomSettings(ctx context.Context, code string, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	pairs := settings.CustomWordPairs
	if pairs == nil {
		pairs = []domain.WordPair{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO room_settings (room_code, difficulty, total_rounds, response_time_seconds, voting_time_seconds, custom_word_pairs, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (room_code) DO UPDATE SET
			difficulty = EXCLUDED.difficulty,
			total_rounds = EXCLUDED.total_rounds,
			response_time_seconds = EXCLUDED.response_time_seconds,
			voting_time_seconds = EXCLUDED.voting_time_seconds,
			custom_word_pairs = EXCLUDED.custom_word_pairs,
			updated_at = NOW()`,
		code, string(settings.Difficulty), settings.TotalRounds, settings.ResponseTimeSeconds, settings.VotingTimeSeconds, pairs)
	if err != nil {
		return fmt.Errorf("save room settings %s: %w", code, err)
	}
	return nil
}

// DeleteRoomSettings removes any stored settings for code
func (s *Store) DeleteRoomSettings(ctx context.Context, code string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM room_settings WHERE room_code = $1`, code); err != nil {
		return fmt.Errorf("delete room settings %s: %w", code, err)
	}
	return nil
}
