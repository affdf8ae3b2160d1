// Package accounts resolves a user's saved cloud credential sets by label.
package accounts

import (
	"errors"
	"strings"

	"github.com/arencloud/pagevault/internal/models"

	"gorm.io/gorm"
)

// ErrCredentialsMissing means no usable key pair exists for the requested
// account. It is terminal: callers report it and never retry or fall through
// to a provider call.
var ErrCredentialsMissing = errors.New("accounts: missing access or secret key")

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the user's credential set for the given account label.
// A row whose access or secret key is empty resolves to ErrCredentialsMissing,
// same as a row that does not exist.
func (r *Resolver) Resolve(userID uint, label string) (models.CloudAccount, error) {
	var acct models.CloudAccount
	err := r.db.Where("user_id = ? AND label = ?", userID, label).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CloudAccount{}, ErrCredentialsMissing
		}
		return models.CloudAccount{}, err
	}
	if strings.TrimSpace(acct.AccessKey) == "" || strings.TrimSpace(acct.SecretKey) == "" {
		return models.CloudAccount{}, ErrCredentialsMissing
	}
	return acct, nil
}
