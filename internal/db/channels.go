package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stwalsh4118/telecast/internal/models"
)

// ChannelRepository handles database operations for channels. The streaming
// path addresses channels by their broadcast number, never by row ID.
type ChannelRepository struct {
	db *DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create inserts a channel together with its programs
func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		return fmt.Errorf("failed to create channel: %w", MapGormError(err))
	}
	return nil
}

// GetByNumber retrieves a channel by broadcast number with its ordered programs
func (r *ChannelRepository) GetByNumber(ctx context.Context, number int) (*models.Channel, error) {
	var channel models.Channel
	result := r.db.WithContext(ctx).
		Preload("Programs", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Where("number = ?", number).
		First(&channel)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &channel, nil
}

// List retrieves all channels ordered by broadcast number, programs included
func (r *ChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	var channels []*models.Channel
	result := r.db.WithContext(ctx).
		Preload("Programs", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Order("number ASC").
		Find(&channels)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return channels, nil
}

// ListNumbers retrieves just the broadcast numbers of all channels
func (r *ChannelRepository) ListNumbers(ctx context.Context) ([]int, error) {
	var numbers []int
	result := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Order("number ASC").
		Pluck("number", &numbers)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return numbers, nil
}

// Update replaces a channel's fields and its full program list
func (r *ChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.Program{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(channel).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", MapGormError(err))
	}
	return nil
}

// DeleteByNumber removes a channel and its programs by broadcast number
func (r *ChannelRepository) DeleteByNumber(ctx context.Context, number int) error {
	channel, err := r.GetByNumber(ctx, number)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.Program{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, "id = ?", channel.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", MapGormError(err))
	}
	return nil
}

// Count returns the number of configured channels
func (r *ChannelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Channel{}).Count(&count)
	if result.Error != nil {
		return 0, MapGormError(result.Error)
	}
	return count, nil
}
