package models

import (
	"time"

	"gorm.io/gorm"
)

// IncomingEmail is a stored inbox record. GmailID deduplicates imports from
// the mailbox API and stays NULL for manually entered records, so the unique
// index only constrains imported rows. AISummary caches the one-sentence
// Gemini summary so a second request never re-calls the service.
type IncomingEmail struct {
	gorm.Model
	GmailID     *string    `json:"gmailId,omitempty" gorm:"column:gmail_id;uniqueIndex"`
	FromAddress string     `json:"from" gorm:"column:from_address"`
	Subject     string     `json:"subject"`
	Snippet     string     `json:"snippet"`
	Body        string     `json:"body" gorm:"type:text"`
	AISummary   string     `json:"aiSummary" gorm:"column:ai_summary;type:text"`
	IsRead      bool       `json:"isRead" gorm:"default:false"`
	ReceivedAt  *time.Time `json:"receivedAt"`
}

func (IncomingEmail) TableName() string { return "incoming_emails" }
