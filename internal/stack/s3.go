// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/log"
)

// Bucket shape constants, shared with the CloudFormation renderer so both
// provisioning paths produce the same bucket.
const (
	LifecycleRuleID      = "expire-noncurrent-state-versions"
	NoncurrentExpireDays = 90
	AbortMultipartDays   = 7
)

// DeleteObjects caps a batch at 1000 identifiers.
const deleteBatchSize = 1000

// BucketExists probes the state bucket with HeadBucket.
func (st *Stack) BucketExists(ctx context.Context) (bool, error) {
	return st.bucketExists(ctx, st.BucketName())
}

// bucketExists probes any bucket by name.
func (st *Stack) bucketExists(ctx context.Context, name string) (bool, error) {
	_, err := st.S3.HeadBucket(ctx, &s3v2.HeadBucketInput{
		Bucket: awsv2.String(name),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("head bucket", "bucket", name))
	}
	return true, nil
}

// EnsureBucket creates the state bucket if absent. Returns true when it
// created the bucket.
func (st *Stack) EnsureBucket(ctx context.Context) (bool, error) {
	exists, err := st.BucketExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		log.Debugf("bucket exists: %s", st.BucketName())
		return false, nil
	}

	input := &s3v2.CreateBucketInput{
		Bucket: awsv2.String(st.BucketName()),
	}
	// us-east-1 rejects an explicit LocationConstraint.
	if st.Region != "" && st.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(st.Region),
		}
	}

	if _, err := st.S3.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			log.Debugf("bucket already owned: %s", st.BucketName())
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("create bucket", "bucket", st.BucketName()))
	}
	log.Infof("created bucket %s", st.BucketName())
	return true, nil
}

// BucketVersioningEnabled reports whether versioning is Enabled.
func (st *Stack) BucketVersioningEnabled(ctx context.Context) (bool, error) {
	out, err := st.S3.GetBucketVersioning(ctx, &s3v2.GetBucketVersioningInput{
		Bucket: awsv2.String(st.BucketName()),
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("get bucket versioning", "bucket", st.BucketName()))
	}
	return out.Status == types.BucketVersioningStatusEnabled, nil
}

// EnsureBucketVersioning enables versioning. State history depends on it.
func (st *Stack) EnsureBucketVersioning(ctx context.Context) (bool, error) {
	enabled, err := st.BucketVersioningEnabled(ctx)
	if err != nil {
		return false, err
	}
	if enabled {
		return false, nil
	}

	_, err = st.S3.PutBucketVersioning(ctx, &s3v2.PutBucketVersioningInput{
		Bucket: awsv2.String(st.BucketName()),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put bucket versioning", "bucket", st.BucketName()))
	}
	log.Infof("enabled versioning on %s", st.BucketName())
	return true, nil
}

// BucketEncrypted reports whether default SSE is AES256.
func (st *Stack) BucketEncrypted(ctx context.Context) (bool, error) {
	out, err := st.S3.GetBucketEncryption(ctx, &s3v2.GetBucketEncryptionInput{
		Bucket: awsv2.String(st.BucketName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get bucket encryption", "bucket", st.BucketName()))
	}
	for _, rule := range out.ServerSideEncryptionConfiguration.Rules {
		if rule.ApplyServerSideEncryptionByDefault != nil &&
			rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm == types.ServerSideEncryptionAes256 {
			return true, nil
		}
	}
	return false, nil
}

// EnsureBucketEncryption sets AES256 default encryption.
func (st *Stack) EnsureBucketEncryption(ctx context.Context) (bool, error) {
	encrypted, err := st.BucketEncrypted(ctx)
	if err != nil {
		return false, err
	}
	if encrypted {
		return false, nil
	}

	_, err = st.S3.PutBucketEncryption(ctx, &s3v2.PutBucketEncryptionInput{
		Bucket: awsv2.String(st.BucketName()),
		ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
			Rules: []types.ServerSideEncryptionRule{{
				ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
					SSEAlgorithm: types.ServerSideEncryptionAes256,
				},
			}},
		},
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put bucket encryption", "bucket", st.BucketName()))
	}
	log.Infof("enabled AES256 encryption on %s", st.BucketName())
	return true, nil
}

// BucketPublicAccessBlocked reports whether all four public access blocks are
// on.
func (st *Stack) BucketPublicAccessBlocked(ctx context.Context) (bool, error) {
	out, err := st.S3.GetPublicAccessBlock(ctx, &s3v2.GetPublicAccessBlockInput{
		Bucket: awsv2.String(st.BucketName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get public access block", "bucket", st.BucketName()))
	}
	c := out.PublicAccessBlockConfiguration
	return boolv(c.BlockPublicAcls) && boolv(c.BlockPublicPolicy) &&
		boolv(c.IgnorePublicAcls) && boolv(c.RestrictPublicBuckets), nil
}

// EnsureBucketPublicAccessBlock turns on all four public access blocks.
func (st *Stack) EnsureBucketPublicAccessBlock(ctx context.Context) (bool, error) {
	blocked, err := st.BucketPublicAccessBlocked(ctx)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	_, err = st.S3.PutPublicAccessBlock(ctx, &s3v2.PutPublicAccessBlockInput{
		Bucket: awsv2.String(st.BucketName()),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       awsv2.Bool(true),
			BlockPublicPolicy:     awsv2.Bool(true),
			IgnorePublicAcls:      awsv2.Bool(true),
			RestrictPublicBuckets: awsv2.Bool(true),
		},
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put public access block", "bucket", st.BucketName()))
	}
	log.Infof("blocked public access on %s", st.BucketName())
	return true, nil
}

// BucketLifecycleConfigured reports whether the noncurrent-expiry rule is in
// place and enabled.
func (st *Stack) BucketLifecycleConfigured(ctx context.Context) (bool, error) {
	out, err := st.S3.GetBucketLifecycleConfiguration(ctx, &s3v2.GetBucketLifecycleConfigurationInput{
		Bucket: awsv2.String(st.BucketName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get bucket lifecycle", "bucket", st.BucketName()))
	}
	for _, rule := range out.Rules {
		if rule.ID != nil && *rule.ID == LifecycleRuleID &&
			rule.Status == types.ExpirationStatusEnabled {
			return true, nil
		}
	}
	return false, nil
}

// EnsureBucketLifecycle installs the rule expiring noncurrent state versions
// and aborting stale multipart uploads.
func (st *Stack) EnsureBucketLifecycle(ctx context.Context) (bool, error) {
	configured, err := st.BucketLifecycleConfigured(ctx)
	if err != nil {
		return false, err
	}
	if configured {
		return false, nil
	}

	_, err = st.S3.PutBucketLifecycleConfiguration(ctx, &s3v2.PutBucketLifecycleConfigurationInput{
		Bucket: awsv2.String(st.BucketName()),
		LifecycleConfiguration: &types.BucketLifecycleConfiguration{
			Rules: []types.LifecycleRule{{
				ID:     awsv2.String(LifecycleRuleID),
				Status: types.ExpirationStatusEnabled,
				Filter: &types.LifecycleRuleFilter{Prefix: awsv2.String("")},
				NoncurrentVersionExpiration: &types.NoncurrentVersionExpiration{
					NoncurrentDays: awsv2.Int32(NoncurrentExpireDays),
				},
				AbortIncompleteMultipartUpload: &types.AbortIncompleteMultipartUpload{
					DaysAfterInitiation: awsv2.Int32(AbortMultipartDays),
				},
			}},
		},
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put bucket lifecycle", "bucket", st.BucketName()))
	}
	log.Infof("installed lifecycle rule on %s", st.BucketName())
	return true, nil
}

// PurgeBucket deletes every object version and delete marker in the state
// bucket. Returns the number of identifiers deleted.
func (st *Stack) PurgeBucket(ctx context.Context) (int, error) {
	bucket := st.BucketName()
	deleted := 0

	var batch []types.ObjectIdentifier
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := st.S3.DeleteObjects(ctx, &s3v2.DeleteObjectsInput{
			Bucket: awsv2.String(bucket),
			Delete: &types.Delete{
				Objects: batch,
				Quiet:   awsv2.Bool(true),
			},
		})
		if err != nil {
			return awsx.FriendlyAWS(err, st.errctx("delete objects", "bucket", bucket))
		}
		deleted += len(batch)
		batch = nil
		return nil
	}

	paginator := s3v2.NewListObjectVersionsPaginator(st.S3, &s3v2.ListObjectVersionsInput{
		Bucket: awsv2.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, awsx.FriendlyAWS(err, st.errctx("list object versions", "bucket", bucket))
		}
		for _, v := range page.Versions {
			batch = append(batch, types.ObjectIdentifier{Key: v.Key, VersionId: v.VersionId})
			if len(batch) == deleteBatchSize {
				if err := flush(); err != nil {
					return deleted, err
				}
			}
		}
		for _, d := range page.DeleteMarkers {
			batch = append(batch, types.ObjectIdentifier{Key: d.Key, VersionId: d.VersionId})
			if len(batch) == deleteBatchSize {
				if err := flush(); err != nil {
					return deleted, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return deleted, err
	}

	log.Infof("purged %d object versions from %s", deleted, bucket)
	return deleted, nil
}

// DeleteBucket removes the state bucket. The bucket must be empty; use
// PurgeBucket first for a non-empty bucket.
func (st *Stack) DeleteBucket(ctx context.Context) error {
	_, err := st.S3.DeleteBucket(ctx, &s3v2.DeleteBucketInput{
		Bucket: awsv2.String(st.BucketName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			log.Debugf("bucket already gone: %s", st.BucketName())
			return nil
		}
		var apiErr interface{ ErrorCode() string }
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketNotEmpty" {
			return fmt.Errorf("bucket %s is not empty; rerun with --purge to delete state history",
				st.BucketName())
		}
		return awsx.FriendlyAWS(err, st.errctx("delete bucket", "bucket", st.BucketName()))
	}
	log.Infof("deleted bucket %s", st.BucketName())
	return nil
}

func boolv(b *bool) bool {
	return b != nil && *b
}
