package model

import "time"

// ClickEvent is one durable record of a redirect traversal. Events are
// append-only; aggregation tolerates out-of-order insertion by ClickedAt.
type ClickEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string    `gorm:"size:36;not null;index:idx_click_events_account_time,priority:1" json:"account_id"`
	LinkID      string    `gorm:"size:36;not null;index" json:"link_id"`
	VisitorID   string    `gorm:"size:36;not null" json:"visitor_id"`
	CountryCode string    `gorm:"size:8;not null" json:"country_code"`
	DeviceClass string    `gorm:"size:64;not null" json:"device_class"`
	ClickedAt   time.Time `gorm:"column:clicked_at;not null;index:idx_click_events_account_time,priority:2" json:"clicked_at"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.recorded"
	ClickConsumerName   = "click-telemetry"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
