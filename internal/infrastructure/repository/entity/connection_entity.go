package entity

import (
	"time"

	"opshub-integrations-layer/internal/domain"
)

// MongoConnectionDoc represents a provider connection in MongoDB.
type MongoConnectionDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Provider    string    `bson:"provider"`
	AccountID   string    `bson:"accountId"`
	AccountName string    `bson:"accountName"`
	Email       string    `bson:"email"`
	Currency    string    `bson:"currency"`
	Timezone    string    `bson:"timezone"`
	AccessToken string    `bson:"accessToken"`
	Scopes      []string  `bson:"scopes"`
	WebhookIDs  []int64   `bson:"webhookIds"`
	ConnectedAt time.Time `bson:"connectedAt"`
	LastSyncAt  time.Time `bson:"lastSyncAt"`
	IsActive    bool      `bson:"isActive"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// MongoConnectionDocFromDomain converts a domain connection to its
// MongoDB document.
func MongoConnectionDocFromDomain(conn *domain.Connection) *MongoConnectionDoc {
	return &MongoConnectionDoc{
		ID:          conn.ID,
		UserID:      conn.UserID,
		Provider:    conn.Provider,
		AccountID:   conn.AccountID,
		AccountName: conn.AccountName,
		Email:       conn.Email,
		Currency:    conn.Currency,
		Timezone:    conn.Timezone,
		AccessToken: conn.AccessToken,
		Scopes:      conn.Scopes,
		WebhookIDs:  conn.WebhookIDs,
		ConnectedAt: conn.ConnectedAt,
		LastSyncAt:  conn.LastSyncAt,
		IsActive:    conn.IsActive,
	}
}

// ToDomain converts the document back to a domain connection.
func (d *MongoConnectionDoc) ToDomain() *domain.Connection {
	return &domain.Connection{
		ID:          d.ID,
		UserID:      d.UserID,
		Provider:    d.Provider,
		AccountID:   d.AccountID,
		AccountName: d.AccountName,
		Email:       d.Email,
		Currency:    d.Currency,
		Timezone:    d.Timezone,
		AccessToken: d.AccessToken,
		Scopes:      d.Scopes,
		WebhookIDs:  d.WebhookIDs,
		ConnectedAt: d.ConnectedAt,
		LastSyncAt:  d.LastSyncAt,
		IsActive:    d.IsActive,
	}
}
