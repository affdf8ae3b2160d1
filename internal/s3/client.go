package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
)

// FallbackRegion is used when neither the request, upload history, nor
// configuration supplies a region.
const FallbackRegion = "us-east-1"

// ErrInvalidCredentials is returned before any provider call is attempted.
var ErrInvalidCredentials = errors.New("s3: access key and secret key are required")

// Credentials is one access/secret key pair. Clients are pure functions of
// these values; nothing is shared across requests, so credentials from one
// request can never leak into another.
type Credentials struct {
	AccessKey string
	SecretKey string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// Options control client construction beyond the credentials themselves.
type Options struct {
	Region      string // defaults to FallbackRegion
	Endpoint    string // optional S3-compatible endpoint; forces path-style addressing
	URLTemplate string // fmt template taking bucket, region, key
}

type Client struct {
	api         *awss3.Client
	region      string
	endpoint    string
	urlTemplate string
}

// New builds a client bound to the given credential set. It validates the
// keys locally and never performs a network round trip itself.
func New(ctx context.Context, creds Credentials, opts Options) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	region := opts.Region
	if region == "" {
		region = FallbackRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}
	api := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Client{api: api, region: region, endpoint: opts.Endpoint, urlTemplate: opts.URLTemplate}, nil
}

// Region reports the region the client was bound to.
func (c *Client) Region() string { return c.region }

// CreateBucket creates the bucket in the client's region. Provider error
// codes (BucketAlreadyExists, BucketAlreadyOwnedByYou, InvalidBucketName)
// propagate unchanged to the caller.
func (c *Client) CreateBucket(ctx context.Context, name string) error {
	in := &awss3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint
	if c.region != FallbackRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}
	_, err := c.api.CreateBucket(ctx, in)
	return err
}

type BucketInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	out, err := c.api.ListBuckets(ctx, &awss3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	buckets := make([]BucketInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		info := BucketInfo{Name: aws.ToString(b.Name)}
		if b.CreationDate != nil {
			info.CreatedAt = *b.CreationDate
		}
		buckets = append(buckets, info)
	}
	return buckets, nil
}

type UploadResult struct {
	Location string
	Bucket   string
	Key      string
}

// Upload puts body under bucket/key and returns the resulting public
// location. Overwrites silently; last write wins.
func (c *Client) Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (UploadResult, error) {
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Location: c.ObjectURL(bucket, key), Bucket: bucket, Key: key}, nil
}

// Overwrite replaces object content in place and returns the computed
// location for the (unchanged) bucket/key pair.
func (c *Client) Overwrite(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error) {
	res, err := c.Upload(ctx, bucket, key, body, contentType)
	if err != nil {
		return "", err
	}
	return res.Location, nil
}

type Object struct {
	Body        []byte
	ContentType string
}

func (c *Client) Fetch(ctx context.Context, bucket, key string) (Object, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Object{}, err
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return Object{}, err
	}
	return Object{Body: body, ContentType: aws.ToString(out.ContentType)}, nil
}

// ObjectURL computes the public URL for bucket/key. Custom endpoints use
// path-style addressing; AWS uses the configured virtual-hosted template.
func (c *Client) ObjectURL(bucket, key string) string {
	if c.endpoint != "" {
		return strings.TrimRight(c.endpoint, "/") + "/" + bucket + "/" + key
	}
	tmpl := c.urlTemplate
	if tmpl == "" {
		tmpl = "https://%s.s3.%s.amazonaws.com/%s"
	}
	return fmt.Sprintf(tmpl, bucket, c.region, key)
}

// ErrorCode extracts the provider error code ("NoSuchBucket",
// "BucketAlreadyOwnedByYou", ...) or returns "" for non-provider errors.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether err means the object or bucket does not exist.
func IsNotFound(err error) bool {
	switch ErrorCode(err) {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}
