package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LovationAdmin/superapp-api/models"
)

type ProfileService struct {
	db *sql.DB
}

func NewProfileService(db *sql.DB) *ProfileService {
	return &ProfileService{db: db}
}

// SaveProfile records the authenticated user locally, refreshing the email on repeat calls.
func (s *ProfileService) SaveProfile(ctx context.Context, user models.AuthUser) (*models.UserProfile, error) {
	if user.ID == "" {
		return nil, validationErrorf("user id is required")
	}

	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_profiles (id, email, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, COALESCE(email, ''), created_at
	`, user.ID, nullString(user.Email)).Scan(&p.ID, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &p, nil
}
