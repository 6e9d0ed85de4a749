// Package source resolves an input location to a readable stream.
//
// Supported locations:
//   - "-" reads standard input
//   - "s3://bucket/key" downloads the object with the AWS SDK (credentials and
//     region come from the usual AWS environment)
//   - anything else is a local file path
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

const s3Scheme = "s3://"

// ErrInvalidS3Path is returned for s3:// locations without a bucket or key.
var ErrInvalidS3Path = errors.New("invalid s3 path: want s3://bucket/key")

// Opener opens input locations. The zero value uses a default AWS session for
// s3:// locations, created on first use.
type Opener struct {
	// Downloader fetches s3:// objects. Nil means s3manager.NewDownloader on a
	// default session.
	Downloader s3manageriface.DownloaderAPI

	// Stdin is read for "-". Nil means os.Stdin.
	Stdin io.Reader
}

// Open resolves path with a zero Opener.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var o Opener
	return o.Open(ctx, path)
}

// Open returns a stream over the content at path. The caller must close it.
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case path == "-":
		in := o.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil

	case strings.HasPrefix(path, s3Scheme):
		return o.openS3(ctx, path)

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return f, nil
	}
}

// IsRemote reports whether path names an object store location.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// SplitS3 splits "s3://bucket/a/b.csv" into "bucket" and "a/b.csv".
func SplitS3(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidS3Path, path)
	}
	return bucket, key, nil
}

func (o *Opener) openS3(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := SplitS3(path)
	if err != nil {
		return nil, err
	}

	if o.Downloader == nil {
		sess, err := session.NewSession()
		if err != nil {
			return nil, fmt.Errorf("create aws session: %w", err)
		}
		o.Downloader = s3manager.NewDownloader(sess)
	}

	buf := aws.NewWriteAtBuffer(nil)
	if _, err := o.Downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}
