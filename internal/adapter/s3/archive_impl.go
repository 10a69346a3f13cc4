package s3

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"

	"github.com/user/headline-service/internal/entity"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveImpl stores rendered homepages in S3.
type ArchiveImpl struct {
	client putObjectAPI
	bucket string
	prefix string
}

// Options configures the archive.
type Options struct {
	Bucket string
	Prefix string
	Region string
	// UsePathStyle is needed for MinIO and other S3 compatible stores.
	UsePathStyle bool
}

// NewArchive builds an S3 client from the default AWS credential chain.
func NewArchive(ctx context.Context, opts Options) (*ArchiveImpl, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "s3: load AWS config")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})
	return newArchive(client, opts.Bucket, opts.Prefix), nil
}

func newArchive(client putObjectAPI, bucket, prefix string) *ArchiveImpl {
	return &ArchiveImpl{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for run: <prefix>/<site>/<yyyy>/<mm>/<dd>/<run id>.html.
func (a *ArchiveImpl) Key(run *entity.ScrapeRun) string {
	return path.Join(a.prefix, run.Site, run.StartedAt.UTC().Format("2006/01/02"), run.ID.String()+".html")
}

// Store uploads html under the run's key.
func (a *ArchiveImpl) Store(ctx context.Context, run *entity.ScrapeRun, html string) error {
	key := a.Key(run)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(html),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata: map[string]string{
			"site":   run.Site,
			"status": string(run.Status),
		},
	})
	if err != nil {
		return eris.Wrapf(err, "s3: put %s/%s", a.bucket, key)
	}
	return nil
}
