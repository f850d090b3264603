package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel represents a virtual broadcast channel. Its programs form a
// repeating timeline anchored at StartTime; wall-clock time determines what
// is on air, not when a client connects.
type Channel struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Number    int       `json:"number" gorm:"type:integer;not null;uniqueIndex;column:number" validate:"required,gte=1"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	Icon      *string   `json:"icon,omitempty" gorm:"type:text;column:icon"`
	StartTime time.Time `json:"start_time" gorm:"type:datetime;not null;column:start_time" validate:"required"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`

	// Programs is the ordered lineup, positioned by cumulative duration.
	Programs []Program `json:"programs" gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
}

// NewChannel creates a new Channel with generated UUID and timestamps
func NewChannel(number int, name string, startTime time.Time) *Channel {
	now := time.Now().UTC()
	return &Channel{
		ID:        uuid.New(),
		Number:    number,
		Name:      name,
		StartTime: startTime.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalDurationMs returns the summed duration of all programs in milliseconds
func (c *Channel) TotalDurationMs() int64 {
	var total int64
	for i := range c.Programs {
		total += c.Programs[i].DurationMs
	}
	return total
}
