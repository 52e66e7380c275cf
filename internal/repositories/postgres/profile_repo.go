package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	TouchLogin(ctx context.Context, userID, email string, at time.Time) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create writes the profile made at sign-up. A retried sign-up overwrites it.
func (r *profileRepo) Create(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "last_login"}),
		}).
		Create(p).Error
}

// TouchLogin merges last_login into the profile, creating a bare row for
// accounts that predate the profiles table.
func (r *profileRepo) TouchLogin(ctx context.Context, userID, email string, at time.Time) error {
	p := &models.Profile{
		UserID:    userID,
		Email:     email,
		CreatedAt: at,
		LastLogin: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_login"}),
		}).
		Create(p).Error
}
