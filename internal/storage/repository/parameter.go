package repository

import (
	"context"
	"fmt"
)

// GetParameter возвращает значение параметра или storage.ErrNotFound.
func (s *Storage) GetParameter(ctx context.Context, key string) (string, error) {
	const op = "storage.GetParameter"
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM parameters WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return value, nil
}

// SetParameter сохраняет значение параметра.
func (s *Storage) SetParameter(ctx context.Context, key, value string) error {
	const op = "storage.SetParameter"
	_, err := s.DB.ExecContext(ctx, `INSERT INTO parameters (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
