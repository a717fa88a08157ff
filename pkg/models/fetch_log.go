package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FetchStatus string

const (
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusPartial FetchStatus = "partial"
	FetchStatusError   FetchStatus = "error"
)

// FetchLog is the append-only audit record of one platform's processing
// within one ingestion run. Rows are never updated or deleted.
type FetchLog struct {
	ID           string      `gorm:"type:uuid;primary_key" json:"id"`
	Platform     Platform    `gorm:"type:varchar(20);not null;index" json:"platform"`
	Status       FetchStatus `gorm:"type:varchar(20);not null" json:"status"`
	ItemsFetched int         `gorm:"default:0" json:"items_fetched"`
	ErrorMessage *string     `json:"error_message"`
	CompletedAt  time.Time   `gorm:"not null" json:"completed_at"`
}

func (FetchLog) TableName() string {
	return "fetch_logs"
}

func (l *FetchLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
