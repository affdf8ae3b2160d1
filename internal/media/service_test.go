package media

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arencloud/pagevault/internal/accounts"
	"github.com/arencloud/pagevault/internal/models"
	"github.com/arencloud/pagevault/internal/s3"

	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUser uint = 7

// fakeObjectStore is an in-memory stand-in for the S3 client. The factory
// hands out the same instance for every call so uploaded content survives
// across operations, the way a real bucket does.
type fakeObjectStore struct {
	region            string
	objects           map[string][]byte
	createBucketCalls []string
	uploadCalls       int
	createBucketErr   error
	uploadErr         error
	fetchErr          error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) location(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, f.region, key)
}

func (f *fakeObjectStore) CreateBucket(ctx context.Context, name string) error {
	f.createBucketCalls = append(f.createBucketCalls, name)
	return f.createBucketErr
}

func (f *fakeObjectStore) ListBuckets(ctx context.Context) ([]s3.BucketInfo, error) {
	return []s3.BucketInfo{{Name: "mybucket"}, {Name: "other"}}, nil
}

func (f *fakeObjectStore) Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (s3.UploadResult, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return s3.UploadResult{}, f.uploadErr
	}
	f.objects[bucket+"/"+key] = append([]byte(nil), body...)
	return s3.UploadResult{Location: f.location(bucket, key), Bucket: bucket, Key: key}, nil
}

func (f *fakeObjectStore) Overwrite(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error) {
	res, err := f.Upload(ctx, bucket, key, body, contentType)
	return res.Location, err
}

func (f *fakeObjectStore) Fetch(ctx context.Context, bucket, key string) (s3.Object, error) {
	if f.fetchErr != nil {
		return s3.Object{}, f.fetchErr
	}
	body, ok := f.objects[bucket+"/"+key]
	if !ok {
		return s3.Object{}, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "key not found"}
	}
	return s3.Object{Body: body, ContentType: "text/html; charset=utf-8"}, nil
}

type factoryCall struct {
	creds  s3.Credentials
	region string
}

type fakeFactory struct {
	store *fakeObjectStore
	calls []factoryCall
}

func (f *fakeFactory) build(ctx context.Context, creds s3.Credentials, region string) (ObjectStore, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, factoryCall{creds: creds, region: region})
	f.store.region = region
	return f.store, nil
}

func newTestService(t *testing.T) (*Service, *fakeFactory, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "opening sqlite")
	require.NoError(t, gdb.AutoMigrate(&models.CloudAccount{}, &models.Media{}), "migrating")

	factory := &fakeFactory{store: newFakeObjectStore()}
	svc := NewService(
		NewStore(gdb),
		accounts.NewResolver(gdb),
		factory.build,
		ServiceConfig{Namespace: "uploads", DefaultRegion: "us-east-1"},
		zap.NewNop(),
	)
	return svc, factory, gdb
}

func seedAccount(t *testing.T, gdb *gorm.DB, label, region string) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.CloudAccount{
		UserID: testUser, Label: label, Provider: "s3",
		AccessKey: "AKIATEST", SecretKey: "sekrit", Region: region,
	}).Error)
}

func TestCreateMissingCredentialsSkipsProvider(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	// account exists but has no secret key
	require.NoError(t, gdb.Create(&models.CloudAccount{
		UserID: testUser, Label: "acct1", Provider: "s3", AccessKey: "AKIATEST",
	}).Error)

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", Name: "doc.html", HTML: "<p>hi</p>",
	})
	require.ErrorIs(t, err, accounts.ErrCredentialsMissing)
	require.Empty(t, factory.calls, "no provider client may be built")
	require.Zero(t, factory.store.uploadCalls, "no upload may be attempted")

	res := Failure(err)
	require.Equal(t, "error", res.Status)
	require.Equal(t, MsgCredentialsMissing, res.Data)
}

func TestCreateScenario(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")

	ref, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", NewBucket: true,
		Name: "doc.html", HTML: "<p>hi</p>",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"mybucket"}, factory.store.createBucketCalls)
	require.Equal(t, []byte("<p>hi</p>"), factory.store.objects["mybucket/uploads/7/doc.html"])

	require.NotEmpty(t, ref.ID)
	require.Equal(t, "doc.html", ref.Name)
	require.Equal(t, "https://mybucket.s3.us-east-1.amazonaws.com/uploads/7/doc.html", ref.Location)

	var rec models.Media
	require.NoError(t, gdb.First(&rec, "id = ?", ref.ID).Error)
	require.Equal(t, testUser, rec.UserID)
	require.Equal(t, "uploads/7/doc.html", rec.ObjectKey)
	require.Equal(t, "mybucket", rec.Bucket)
	require.Equal(t, "us-east-1", rec.Region)
	require.Equal(t, "html", rec.MediaType)
	require.Equal(t, "s3", rec.Provider)

	res := Success(ref)
	require.Equal(t, "success", res.Status)
}

func TestCreateSkipsBucketCreation(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", NewBucket: false,
		Name: "doc.html", HTML: "<p>hi</p>",
	})
	require.NoError(t, err)
	require.Empty(t, factory.store.createBucketCalls, "newBucket=false must not create a bucket")
	require.Equal(t, 1, factory.store.uploadCalls)
}

func TestCreateBucketErrorAbortsUpload(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")
	factory.store.createBucketErr = &smithy.GenericAPIError{Code: "BucketAlreadyExists"}

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", NewBucket: true,
		Name: "doc.html", HTML: "<p>hi</p>",
	})
	require.Error(t, err)
	require.Zero(t, factory.store.uploadCalls, "no partial upload after bucket failure")
	require.Equal(t, MsgBucketExists, Message(err))

	var count int64
	require.NoError(t, gdb.Model(&models.Media{}).Count(&count).Error)
	require.Zero(t, count, "no record persisted")
}

func TestCreateRejectsUnknownCloud(t *testing.T) {
	t.Parallel()
	svc, factory, _ := newTestService(t)
	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "gcs", Account: "acct1", Bucket: "b", Name: "n", HTML: "x",
	})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	require.Empty(t, factory.calls)
}

func TestRegionInferredFromHistory(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")
	require.NoError(t, gdb.Create(&models.Media{
		ID: "prior", UserID: testUser, Account: "acct1", Name: "old.html",
		Bucket: "mybucket", Region: "eu-west-1", MediaType: "html", Provider: "s3",
	}).Error)

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", Name: "doc.html", HTML: "<p>hi</p>",
	})
	require.NoError(t, err)
	require.Len(t, factory.calls, 1)
	require.Equal(t, "eu-west-1", factory.calls[0].region, "must reuse the prior record's region")
}

func TestRegionFallsBackToAccountThenDefault(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "ap-southeast-2")
	seedAccountNoRegion := func() {
		require.NoError(t, gdb.Create(&models.CloudAccount{
			UserID: testUser, Label: "acct2", Provider: "s3", AccessKey: "AK", SecretKey: "SK",
		}).Error)
	}
	seedAccountNoRegion()

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "fresh-bucket", Name: "doc.html", HTML: "x",
	})
	require.NoError(t, err)
	require.Equal(t, "ap-southeast-2", factory.calls[0].region)

	_, err = svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct2", Bucket: "other-fresh", Name: "doc.html", HTML: "x",
	})
	require.NoError(t, err)
	require.Equal(t, "us-east-1", factory.calls[1].region)
}

func TestExplicitRegionWins(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "ap-southeast-2")

	_, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", Region: "ca-central-1",
		Name: "doc.html", HTML: "x",
	})
	require.NoError(t, err)
	require.Equal(t, "ca-central-1", factory.calls[0].region)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	t.Parallel()
	svc, _, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")
	html := "<html><body><p>hi &amp; bye</p></body></html>"

	ref, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", NewBucket: true,
		Name: "doc.html", HTML: html,
	})
	require.NoError(t, err)

	got, err := svc.GetPage(context.Background(), testUser, ref.ID)
	require.NoError(t, err)
	require.Equal(t, html, got, "fetched content must be byte-identical")
}

func TestGetPageScopedToOwner(t *testing.T) {
	t.Parallel()
	svc, _, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")
	ref, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", Name: "doc.html", HTML: "x",
	})
	require.NoError(t, err)

	_, err = svc.GetPage(context.Background(), testUser+1, ref.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateIsIdempotent(t *testing.T) {
	t.Parallel()
	svc, factory, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")
	ref, err := svc.CreatePage(context.Background(), testUser, CreatePageInput{
		Cloud: "s3", Account: "acct1", Bucket: "mybucket", Name: "doc.html", HTML: "<p>v1</p>",
	})
	require.NoError(t, err)

	in := UpdatePageInput{ID: ref.ID, Name: "renamed.html", HTML: "<p>v2</p>"}
	first, err := svc.UpdatePage(context.Background(), testUser, in)
	require.NoError(t, err)
	second, err := svc.UpdatePage(context.Background(), testUser, in)
	require.NoError(t, err)

	require.Equal(t, first.Location, second.Location)
	require.Contains(t, first.Location, "mybucket")
	require.Equal(t, []byte("<p>v2</p>"), factory.store.objects["mybucket/uploads/7/doc.html"])

	var rec models.Media
	require.NoError(t, gdb.First(&rec, "id = ?", ref.ID).Error)
	require.Equal(t, "renamed.html", rec.Name)
	require.Equal(t, first.Location, rec.Location, "location must be written back")
	require.Equal(t, "uploads/7/doc.html", rec.ObjectKey, "key never changes on update")
}

func TestListBuckets(t *testing.T) {
	t.Parallel()
	svc, _, gdb := newTestService(t)
	seedAccount(t, gdb, "acct1", "")

	buckets, err := svc.ListBuckets(context.Background(), testUser, "acct1")
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	require.Equal(t, "mybucket", buckets[0].Name)
}
