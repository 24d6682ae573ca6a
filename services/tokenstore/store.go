// Package tokenstore persists Swit and Asana OAuth tokens keyed by Swit user id.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asana-swit-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no record exists for the user.
	ErrNotFound = errors.New("token record not found")
	// ErrUnavailable wraps every storage failure.
	ErrUnavailable = errors.New("token storage unavailable")
)

// Store reads and writes models.UserData rows.
type Store struct {
	db     *gorm.DB
	cipher *Cipher
	now    func() time.Time
}

// New creates a Store. cipher may be nil.
func New(db *gorm.DB, cipher *Cipher) *Store {
	return &Store{db: db, cipher: cipher, now: time.Now}
}

// Migrate creates or updates the userdata table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.UserData{}); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the decrypted record for userID.
func (s *Store) Get(ctx context.Context, userID string) (*models.UserData, error) {
	var rec models.UserData
	err := s.db.WithContext(ctx).Where("swit_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, userID, err)
	}

	fields := []*string{&rec.SwitToken, &rec.SwitRefreshToken, &rec.AsanaToken, &rec.AsanaRefreshToken}
	for _, f := range fields {
		plain, err := s.cipher.Open(*f)
		if err != nil {
			return nil, fmt.Errorf("%w: open token for %s: %v", ErrUnavailable, userID, err)
		}
		*f = plain
	}
	return &rec, nil
}

// UpsertSwitTokens inserts the record or replaces its Swit tokens.
func (s *Store) UpsertSwitTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	sealed, err := s.seal(accessToken, refreshToken)
	if err != nil {
		return err
	}
	now := s.now()
	rec := models.UserData{
		SwitID:           userID,
		SwitToken:        sealed[0],
		SwitRefreshToken: sealed[1],
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"swit_token", "swit_refresh_token", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("%w: upsert swit tokens for %s: %v", ErrUnavailable, userID, err)
	}
	return nil
}

// UpdateAsanaTokens stores the result of the Asana authorization-code exchange.
// The record must already exist.
func (s *Store) UpdateAsanaTokens(ctx context.Context, userID, asanaUserID, accessToken, refreshToken string) error {
	sealed, err := s.seal(accessToken, refreshToken)
	if err != nil {
		return err
	}
	return s.update(ctx, userID, map[string]any{
		"asana_id":            asanaUserID,
		"asana_token":         sealed[0],
		"asana_refresh_token": sealed[1],
	})
}

// UpdateSwitTokens stores refreshed Swit tokens.
func (s *Store) UpdateSwitTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	sealed, err := s.seal(accessToken, refreshToken)
	if err != nil {
		return err
	}
	return s.update(ctx, userID, map[string]any{
		"swit_token":         sealed[0],
		"swit_refresh_token": sealed[1],
	})
}

// UpdateAsanaTokensOnly stores refreshed Asana tokens without touching asana_id.
func (s *Store) UpdateAsanaTokensOnly(ctx context.Context, userID, accessToken, refreshToken string) error {
	sealed, err := s.seal(accessToken, refreshToken)
	if err != nil {
		return err
	}
	return s.update(ctx, userID, map[string]any{
		"asana_token":         sealed[0],
		"asana_refresh_token": sealed[1],
	})
}

func (s *Store) update(ctx context.Context, userID string, values map[string]any) error {
	values["updated_at"] = s.now()
	res := s.db.WithContext(ctx).Model(&models.UserData{}).Where("swit_id = ?", userID).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("%w: update %s: %v", ErrUnavailable, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) seal(values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		sealed, err := s.cipher.Seal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: seal token: %v", ErrUnavailable, err)
		}
		out[i] = sealed
	}
	return out, nil
}
