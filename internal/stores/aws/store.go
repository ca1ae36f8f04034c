package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"InkBoard/internal/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "snapshots/"

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Store struct {
	client ObjectAPI
	bucket string
}

// NewStore creates an S3-backed store using the default AWS configuration
// chain.
func NewStore(ctx context.Context, bucket string) (core.SnapshotStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewStoreWithClient(s3.NewFromConfig(cfg), bucket), nil
}

// NewStoreWithClient creates a store on an existing client.
func NewStoreWithClient(client ObjectAPI, bucket string) core.SnapshotStore {
	return &s3Store{client: client, bucket: bucket}
}

func objectKey(id string) (string, error) {
	if err := core.CheckID(id); err != nil {
		return "", err
	}
	return keyPrefix + id + ".json", nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	return errors.As(err, &nsk)
}

func (s *s3Store) get(ctx context.Context, key string) (*core.Record, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	var rec core.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode object %s: %w", key, err)
	}
	return &rec, nil
}

func (s *s3Store) Save(ctx context.Context, rec *core.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	key, err := objectKey(rec.ID)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_id": rec.ID, "bucket": s.bucket, "key": key})

	now := time.Now()
	rec.CreatedAt = now
	if old, err := s.get(ctx, key); err == nil {
		rec.CreatedAt = old.CreatedAt
	} else if !isNotFound(err) {
		log.WithError(err).Warn("Could not read existing snapshot, treating as new")
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.WithError(err).Error("Failed to upload snapshot")
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	log.Info("Snapshot saved")
	return rec.ID, nil
}

func (s *s3Store) Load(ctx context.Context, id string) (*core.Record, error) {
	key, err := objectKey(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("snapshot %s: %w", id, core.ErrNotFound)
		}
		logrus.WithError(err).WithField("snapshot_id", id).Error("Failed to retrieve snapshot")
		return nil, err
	}
	return rec, nil
}

func (s *s3Store) List(ctx context.Context) ([]*core.Record, error) {
	var records []*core.Record
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			rec, err := s.get(ctx, aws.ToString(obj.Key))
			if err != nil {
				logrus.WithError(err).Warnf("Failed to read object %s, skipping", aws.ToString(obj.Key))
				continue
			}
			rec.Data = nil
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	key, err := objectKey(id)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
