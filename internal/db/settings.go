package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/telecast/internal/models"
)

// SettingsRepository handles database operations for encoder settings.
// Settings is a singleton table with only one row.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the encoder settings (creates with defaults if not exists)
func (r *SettingsRepository) Get(ctx context.Context) (*models.FFmpegSettings, error) {
	var settings models.FFmpegSettings
	result := r.db.WithContext(ctx).Where("id = ?", 1).First(&settings)

	if result.Error != nil {
		if IsNotFound(MapGormError(result.Error)) {
			defaults := models.DefaultFFmpegSettings()
			if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
				return nil, fmt.Errorf("failed to create default settings: %w", MapGormError(err))
			}
			return defaults, nil
		}
		return nil, MapGormError(result.Error)
	}

	return &settings, nil
}

// Update updates the encoder settings (singleton row)
func (r *SettingsRepository) Update(ctx context.Context, settings *models.FFmpegSettings) error {
	settings.ID = 1
	settings.UpdatedAt = time.Now().UTC()

	// Save rather than Updates so that false flags are persisted too
	result := r.db.WithContext(ctx).Save(settings)
	if result.Error != nil {
		return fmt.Errorf("failed to update settings: %w", MapGormError(result.Error))
	}
	return nil
}

// Reset restores the encoder settings to their defaults and returns them
func (r *SettingsRepository) Reset(ctx context.Context) (*models.FFmpegSettings, error) {
	defaults := models.DefaultFFmpegSettings()
	if err := r.Update(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
