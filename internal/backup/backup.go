// Package backup exports a JSON snapshot of the local collections to an
// S3-compatible bucket (AWS S3 or MinIO).
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/stockkeeper/internal/client/storage"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

var ErrBackupDisabled = errors.New("backup disabled: no bucket configured")

const (
	keyPrefix     = "snapshots/"
	keyTimeLayout = "20060102T150405Z"
	defaultRegion = "us-east-1"
)

// swapped in tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// Config holds the bucket settings. An empty Bucket disables backups.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Snapshot is the uploaded document. Tombstones are included.
type Snapshot struct {
	CreatedAt  time.Time              `json:"created_at"`
	Categories []models.Category      `json:"categories"`
	Hardware   []models.HardwareItem  `json:"hardware"`
	Notes      []models.Note          `json:"notes"`
	AuditLogs  []models.AuditLogEntry `json:"audit_logs"`
}

// uploader is the part of *s3.Client the exporter needs.
type uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Exporter struct {
	db     dbx.DBTX
	repos  storage.RepositoryManager
	cfg    Config
	logger logging.Logger
	client uploader
	now    func() time.Time
}

func NewExporter(db dbx.DBTX, repos storage.RepositoryManager, cfg Config, logger logging.Logger) *Exporter {
	return &Exporter{
		db:     db,
		repos:  repos,
		cfg:    cfg,
		logger: logger.With("module", "backup"),
		now:    models.Now,
	}
}

func (e *Exporter) Enabled() bool {
	return e.cfg.Bucket != ""
}

// Export uploads a snapshot and returns its object key.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	if !e.Enabled() {
		return "", ErrBackupDisabled
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	client, err := e.uploader(ctx)
	if err != nil {
		return "", err
	}

	key := keyPrefix + snap.CreatedAt.UTC().Format(keyTimeLayout) + ".json"
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	e.logger.Info(ctx, "snapshot uploaded", "bucket", e.cfg.Bucket, "key", key, "bytes", len(body))
	return key, nil
}

// Snapshot reads every local collection including tombstones.
func (e *Exporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{CreatedAt: e.now()}
	var err error

	if snap.Categories, err = e.repos.Categories(e.db).List(ctx, true); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	if snap.Hardware, err = e.repos.Hardware(e.db).List(ctx, true); err != nil {
		return nil, fmt.Errorf("read hardware: %w", err)
	}
	if snap.Notes, err = e.repos.Notes(e.db).List(ctx, true); err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	if snap.AuditLogs, err = e.repos.AuditLogs(e.db).List(ctx, 0); err != nil {
		return nil, fmt.Errorf("read audit logs: %w", err)
	}
	return snap, nil
}

func (e *Exporter) uploader(ctx context.Context) (uploader, error) {
	if e.client != nil {
		return e.client, nil
	}

	region := e.cfg.Region
	if region == "" {
		region = defaultRegion
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			e.cfg.AccessKey,
			e.cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	e.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if e.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return e.client, nil
}
