package source

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	binderrors "github.com/vango-dev/vbind/internal/errors"
)

// Loader reads the bytes behind a URI.
type Loader interface {
	Load(ctx context.Context, uri string) ([]byte, error)
}

// FileLoader reads local paths and file:// URIs.
type FileLoader struct{}

// Load implements Loader.
func (FileLoader) Load(_ context.Context, uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, binderrors.New("E040").WithDetail(path).Wrap(err)
	}
	return data, nil
}

// S3API is the subset of *s3.Client the S3 loader uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads s3://bucket/key URIs.
type S3Loader struct {
	client S3API
}

// NewS3Loader creates an S3Loader over client.
func NewS3Loader(client S3API) *S3Loader {
	return &S3Loader{client: client}
}

// Load implements Loader.
func (l *S3Loader) Load(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, binderrors.New("E040").WithDetail(uri).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, binderrors.New("E040").WithDetail(uri).Wrap(err)
	}
	return data, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "s3" || u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
		return "", "", binderrors.New("E041").WithDetail(uri).
			WithSuggestion("Use s3://bucket/path/to/object")
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// Mux dispatches to a Loader by URI scheme.
type Mux struct {
	file Loader
	s3   Loader
}

// NewMux creates a Mux. s3 may be nil, in which case s3:// URIs fail with E041.
func NewMux(file, s3 Loader) *Mux {
	if file == nil {
		file = FileLoader{}
	}
	return &Mux{file: file, s3: s3}
}

// Load implements Loader.
func (m *Mux) Load(ctx context.Context, uri string) ([]byte, error) {
	scheme, _, found := strings.Cut(uri, "://")
	if !found {
		return m.file.Load(ctx, uri)
	}

	switch scheme {
	case "file":
		return m.file.Load(ctx, uri)
	case "s3":
		if m.s3 != nil {
			return m.s3.Load(ctx, uri)
		}
		return nil, binderrors.New("E041").WithDetail(uri).
			WithSuggestion("Configure an S3 region to load s3:// sources")
	}
	return nil, binderrors.New("E041").WithDetail(uri)
}
