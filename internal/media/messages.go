package media

import (
	"errors"

	"github.com/arencloud/pagevault/internal/accounts"
	"github.com/arencloud/pagevault/internal/s3"
)

// User-facing messages. Provider error codes map to a fixed set; anything
// unrecognized collapses to the generic fallback.
const (
	MsgBucketNotFound     = "The specified bucket does not exist."
	MsgInvalidBucketName  = "The specified bucket name is not valid."
	MsgBucketExists       = "The requested bucket name is not available. Please choose a different name."
	MsgBucketOwned        = "You already own a bucket with that name."
	MsgCredentialsMissing = "AWS credentials are missing for this account. Add an access key and secret key in your settings."
	MsgPageNotFound       = "The requested page could not be found."
	MsgInvalidInput       = "A bucket and file name are required."
	MsgUnsupportedCloud   = "Only the S3 cloud provider is supported."
	MsgGeneric            = "Something went wrong. Please try again."
)

// Message translates any orchestration failure into its user-facing text.
func Message(err error) string {
	switch {
	case errors.Is(err, accounts.ErrCredentialsMissing), errors.Is(err, s3.ErrInvalidCredentials):
		return MsgCredentialsMissing
	case errors.Is(err, ErrNotFound):
		return MsgPageNotFound
	case errors.Is(err, ErrInvalidInput):
		return MsgInvalidInput
	case errors.Is(err, ErrUnsupportedProvider):
		return MsgUnsupportedCloud
	}
	switch s3.ErrorCode(err) {
	case "NoSuchBucket":
		return MsgBucketNotFound
	case "InvalidBucketName":
		return MsgInvalidBucketName
	case "BucketAlreadyExists":
		return MsgBucketExists
	case "BucketAlreadyOwnedByYou":
		return MsgBucketOwned
	}
	return MsgGeneric
}

// Result is the envelope every page operation answers with. Failures are
// values, never transport faults.
type Result struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func Success(data any) Result {
	return Result{Status: "success", Data: data}
}

func Failure(err error) Result {
	return Result{Status: "error", Data: Message(err)}
}
