// Package cloud publishes exported simulator files to object storage so
// colleagues without a local database can pull them.
package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher wraps an S3 bucket holding exported files, keyed as
// <transistor>/<filename>.
type Publisher struct {
	svc    *s3.Client
	bucket string
}

// NewPublisher loads the ambient AWS configuration for the given region.
func NewPublisher(ctx context.Context, region, bucket string) (*Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Publisher{svc: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func exportContentType(name string) string {
	switch {
	case len(name) > 5 && name[len(name)-5:] == ".json":
		return "application/json"
	case len(name) > 4 && name[len(name)-4:] == ".xml":
		return "application/xml"
	default:
		return "text/plain"
	}
}

// PublishExport uploads one exported file under the transistor's prefix and
// returns a presigned download URL valid for an hour.
func (p *Publisher) PublishExport(ctx context.Context, transistor, filename string, data []byte) (string, error) {
	key := transistor + "/" + filename
	_, err := p.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(exportContentType(filename)),
		Metadata: map[string]string{
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	presign := s3.NewPresignClient(p.svc)
	out, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return out.URL, nil
}

// Download fetches a previously published export.
func (p *Publisher) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := p.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// List returns the keys published under a transistor prefix.
func (p *Publisher) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(p.svc, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Delete removes one published export.
func (p *Publisher) Delete(ctx context.Context, key string) error {
	_, err := p.svc.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
