// Package media holds the upload orchestration and the metadata records
// describing uploaded pages.
package media

import (
	"errors"

	"github.com/arencloud/pagevault/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound means no media record exists for the id (or it belongs to
// another user, which callers must not be able to distinguish).
var ErrNotFound = errors.New("media: record not found")

// Store is the gateway to the media collection. It issues create/get/find/
// patch calls only; text matching is delegated to the underlying store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(rec *models.Media) error {
	return s.db.Create(rec).Error
}

func (s *Store) Get(id string) (models.Media, error) {
	var rec models.Media
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Media{}, ErrNotFound
		}
		return models.Media{}, err
	}
	return rec, nil
}

// Query filters media records. Name matches fuzzily (substring, case handling
// per the underlying store's LIKE semantics).
type Query struct {
	UserID    uint
	MediaType string
	Name      string
}

func (s *Store) Find(q Query) ([]models.Media, error) {
	tx := s.db.Where("user_id = ?", q.UserID)
	if q.MediaType != "" {
		tx = tx.Where("media_type = ?", q.MediaType)
	}
	if q.Name != "" {
		tx = tx.Where("name LIKE ?", "%"+q.Name+"%")
	}
	var recs []models.Media
	if err := tx.Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Patch applies the given fields to one record.
func (s *Store) Patch(id string, fields map[string]any) error {
	res := s.db.Model(&models.Media{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestForBucket returns the user's most recent record for the bucket. Used
// to infer a region when an upload request does not name one.
func (s *Store) LatestForBucket(userID uint, bucket string) (models.Media, error) {
	var rec models.Media
	err := s.db.Where("user_id = ? AND bucket = ?", userID, bucket).
		Order("created_at desc").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Media{}, ErrNotFound
		}
		return models.Media{}, err
	}
	return rec, nil
}
