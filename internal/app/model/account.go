package model

import "time"

// Account is the aggregate root owning links and their click history.
//
// TotalClicks and UniqueVisitorCount are write-time counters kept for cheap
// profile reads. They are all-time numbers; windowed analytics are always
// recomputed from the click-event log and can legitimately differ.
type Account struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	DisplayName        string    `gorm:"size:120;not null"`
	TotalClicks        int64     `gorm:"not null;default:0"`
	UniqueVisitorCount int64     `gorm:"not null;default:0"`
	Links              []Link    `gorm:"foreignKey:AccountID"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// Link is a single destination on an account's page. ShortCode is globally
// unique and immutable once assigned. Position preserves insertion order for
// display and per-link analytics.
type Link struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID      string    `gorm:"size:36;not null;index" json:"account_id"`
	ShortCode      string    `gorm:"size:32;not null;uniqueIndex" json:"short_code"`
	Title          string    `gorm:"size:200" json:"title"`
	DestinationURL string    `gorm:"type:text;not null" json:"destination_url"`
	ClickCount     int64     `gorm:"not null;default:0" json:"click_count"`
	Position       int       `gorm:"not null;default:0" json:"position"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
