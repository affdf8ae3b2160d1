package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CloudAccount is a named credential set owned by a user. Uploads reference it
// by label; the secret is never serialized back to clients.
type CloudAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_account_user_label,unique;not null" json:"userId"`
	Label     string    `gorm:"index:idx_account_user_label,unique;not null" json:"label"`
	Provider  string    `json:"provider"` // s3
	AccessKey string    `json:"accessKey"`
	SecretKey string    `json:"-"`
	Region    string    `json:"region"` // optional per-account default
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Media is the persisted record of one uploaded object. Exactly one
// (Bucket, ObjectKey, Region) triple in the object store backs each row; the
// object store knows nothing about the row.
type Media struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	Account   string    `json:"account"` // CloudAccount label used for the upload
	Name      string    `gorm:"index" json:"name"`
	Location  string    `json:"location"` // public object URL
	ObjectKey string    `json:"objectKey"`
	Bucket    string    `gorm:"index" json:"bucket"`
	Region    string    `json:"region"`
	MediaType string    `json:"mediaType"` // html
	Provider  string    `json:"provider"`  // s3
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
