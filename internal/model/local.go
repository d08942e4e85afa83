package model

import "time"

// Credential is one persisted key/value pair. The keys are fixed:
// access_token, refresh_token, user (serialized JSON).
type Credential struct {
	Key       string `gorm:"primaryKey;size:32;not null"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

const (
	CredentialAccessToken  = "access_token"
	CredentialRefreshToken = "refresh_token"
	CredentialUser         = "user"
)

// CachedOrder mirrors a backend order with the event fields denormalized
// so order history renders offline.
type CachedOrder struct {
	ID            string `gorm:"primaryKey;size:64;not null"` // backend order id
	UserID        string `gorm:"size:64;index;not null"`
	EventID       string `gorm:"size:64;index;not null"`
	EventTitle    string `gorm:"not null"`
	EventDate     time.Time
	EventLocation string
	Quantity      int    `gorm:"not null"`
	TotalAmount   string `gorm:"size:32;not null"` // decimal string
	PaymentMethod string `gorm:"size:32;not null"`
	Status        string `gorm:"size:16;index;not null"` // pending, approved, rejected
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CachedTicket mirrors a backend ticket for offline display and the
// scan-time fast path.
type CachedTicket struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	TicketID   string `gorm:"size:64;uniqueIndex;not null"` // scannable identifier
	OrderID    string `gorm:"size:64;index;not null"`
	EventID    string `gorm:"size:64;index;not null"`
	EventTitle string
	IsUsed     bool `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
