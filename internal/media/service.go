package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arencloud/pagevault/internal/accounts"
	"github.com/arencloud/pagevault/internal/models"
	"github.com/arencloud/pagevault/internal/s3"

	"go.uber.org/zap"
)

const (
	mediaTypeHTML   = "html"
	providerS3      = "s3"
	htmlContentType = "text/html; charset=utf-8"
)

var (
	ErrUnsupportedProvider = errors.New("media: unsupported cloud provider")
	ErrInvalidInput        = errors.New("media: bucket and file name are required")
)

// ObjectStore is the slice of the S3 client the orchestrator needs. A fresh
// store is built per call from that call's credentials; nothing is shared
// across requests.
type ObjectStore interface {
	CreateBucket(ctx context.Context, name string) error
	ListBuckets(ctx context.Context) ([]s3.BucketInfo, error)
	Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (s3.UploadResult, error)
	Overwrite(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error)
	Fetch(ctx context.Context, bucket, key string) (s3.Object, error)
}

// ObjectStoreFactory builds a store bound to one credential set and region.
type ObjectStoreFactory func(ctx context.Context, creds s3.Credentials, region string) (ObjectStore, error)

type ServiceConfig struct {
	Namespace     string // object key prefix
	DefaultRegion string
}

// Service coordinates credential resolution, bucket creation on demand,
// region inference and the upload itself, then records the result.
type Service struct {
	store    *Store
	resolver *accounts.Resolver
	objects  ObjectStoreFactory
	cfg      ServiceConfig
	log      *zap.Logger
}

func NewService(store *Store, resolver *accounts.Resolver, objects ObjectStoreFactory, cfg ServiceConfig, log *zap.Logger) *Service {
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = s3.FallbackRegion
	}
	return &Service{store: store, resolver: resolver, objects: objects, cfg: cfg, log: log}
}

type CreatePageInput struct {
	Cloud     string `json:"cloud"`
	Account   string `json:"awsAccount"`
	Bucket    string `json:"bucket"`
	NewBucket bool   `json:"newBucket"`
	Region    string `json:"region"`
	Name      string `json:"name"`
	HTML      string `json:"html"`
}

type PageRef struct {
	Location string `json:"location"`
	ID       string `json:"_id"`
	Name     string `json:"name"`
}

// CreatePage uploads one HTML document and records it. Credentials are
// resolved first and nothing touches the provider when they are missing.
// The object goes up before the record is written; a crash in between leaves
// an orphaned object, which is accepted.
func (s *Service) CreatePage(ctx context.Context, userID uint, in CreatePageInput) (PageRef, error) {
	if !strings.EqualFold(in.Cloud, providerS3) {
		return PageRef{}, ErrUnsupportedProvider
	}
	if in.Bucket == "" || in.Name == "" {
		return PageRef{}, ErrInvalidInput
	}
	acct, err := s.resolver.Resolve(userID, in.Account)
	if err != nil {
		return PageRef{}, err
	}
	region := in.Region
	if region == "" {
		region = s.inferRegion(userID, in.Bucket, acct)
	}
	store, err := s.objects(ctx, s3.Credentials{AccessKey: acct.AccessKey, SecretKey: acct.SecretKey}, region)
	if err != nil {
		return PageRef{}, err
	}
	if in.NewBucket {
		// any bucket-creation error aborts before an upload is attempted
		if err := store.CreateBucket(ctx, in.Bucket); err != nil {
			return PageRef{}, err
		}
	}
	key := s.objectKey(userID, in.Name)
	res, err := store.Upload(ctx, in.Bucket, key, []byte(in.HTML), htmlContentType)
	if err != nil {
		return PageRef{}, err
	}
	rec := models.Media{
		UserID:    userID,
		Account:   in.Account,
		Name:      in.Name,
		Location:  res.Location,
		ObjectKey: res.Key,
		Bucket:    res.Bucket,
		Region:    region,
		MediaType: mediaTypeHTML,
		Provider:  providerS3,
	}
	if err := s.store.Create(&rec); err != nil {
		return PageRef{}, err
	}
	s.log.Info("page uploaded",
		zap.Uint("userId", userID),
		zap.String("bucket", res.Bucket),
		zap.String("key", res.Key),
		zap.String("region", region),
	)
	return PageRef{Location: res.Location, ID: rec.ID, Name: rec.Name}, nil
}

// GetPage returns the stored HTML for the record id, scoped to the user.
func (s *Service) GetPage(ctx context.Context, userID uint, id string) (string, error) {
	rec, err := s.owned(userID, id)
	if err != nil {
		return "", err
	}
	acct, err := s.resolver.Resolve(userID, rec.Account)
	if err != nil {
		return "", err
	}
	store, err := s.objects(ctx, s3.Credentials{AccessKey: acct.AccessKey, SecretKey: acct.SecretKey}, rec.Region)
	if err != nil {
		return "", err
	}
	obj, err := store.Fetch(ctx, rec.Bucket, rec.ObjectKey)
	if err != nil {
		return "", err
	}
	return string(obj.Body), nil
}

type UpdatePageInput struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	HTML string `json:"html"`
}

type PageUpdate struct {
	Location string `json:"location"`
	Name     string `json:"name"`
}

// UpdatePage overwrites the stored object in place and patches the record's
// name and location. Bucket, key and region never change across an update, so
// the recomputed location only moves when the URL template configuration did;
// persisting it keeps the record consistent with what callers are shown.
func (s *Service) UpdatePage(ctx context.Context, userID uint, in UpdatePageInput) (PageUpdate, error) {
	rec, err := s.owned(userID, in.ID)
	if err != nil {
		return PageUpdate{}, err
	}
	acct, err := s.resolver.Resolve(userID, rec.Account)
	if err != nil {
		return PageUpdate{}, err
	}
	store, err := s.objects(ctx, s3.Credentials{AccessKey: acct.AccessKey, SecretKey: acct.SecretKey}, rec.Region)
	if err != nil {
		return PageUpdate{}, err
	}
	location, err := store.Overwrite(ctx, rec.Bucket, rec.ObjectKey, []byte(in.HTML), htmlContentType)
	if err != nil {
		return PageUpdate{}, err
	}
	name := in.Name
	if name == "" {
		name = rec.Name
	}
	if err := s.store.Patch(rec.ID, map[string]any{"name": name, "location": location}); err != nil {
		return PageUpdate{}, err
	}
	s.log.Info("page updated",
		zap.Uint("userId", userID),
		zap.String("id", rec.ID),
		zap.String("bucket", rec.Bucket),
	)
	return PageUpdate{Location: location, Name: name}, nil
}

// FindPages lists the user's HTML media records, optionally fuzzy-filtered by name.
func (s *Service) FindPages(ctx context.Context, userID uint, name string) ([]models.Media, error) {
	return s.store.Find(Query{UserID: userID, MediaType: mediaTypeHTML, Name: name})
}

// ListBuckets returns bucket summaries for the user's account.
func (s *Service) ListBuckets(ctx context.Context, userID uint, label string) ([]s3.BucketInfo, error) {
	acct, err := s.resolver.Resolve(userID, label)
	if err != nil {
		return nil, err
	}
	region := acct.Region
	if region == "" {
		region = s.cfg.DefaultRegion
	}
	store, err := s.objects(ctx, s3.Credentials{AccessKey: acct.AccessKey, SecretKey: acct.SecretKey}, region)
	if err != nil {
		return nil, err
	}
	return store.ListBuckets(ctx)
}

// owned loads a record and hides other users' records behind ErrNotFound.
func (s *Service) owned(userID uint, id string) (models.Media, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return models.Media{}, err
	}
	if rec.UserID != userID {
		return models.Media{}, ErrNotFound
	}
	return rec, nil
}

// inferRegion picks a region when the request does not name one: the user's
// most recent upload to the same bucket, then the account default, then the
// configured default. Two concurrent first uploads to a brand-new bucket can
// infer divergent values; the object store stays the source of truth for
// bucket placement and the stored region is a hint for later uploads, so
// this is accepted rather than serialized.
func (s *Service) inferRegion(userID uint, bucket string, acct models.CloudAccount) string {
	if prev, err := s.store.LatestForBucket(userID, bucket); err == nil && prev.Region != "" {
		return prev.Region
	}
	if acct.Region != "" {
		return acct.Region
	}
	return s.cfg.DefaultRegion
}

func (s *Service) objectKey(userID uint, fileName string) string {
	return fmt.Sprintf("%s/%d/%s", s.cfg.Namespace, userID, fileName)
}
