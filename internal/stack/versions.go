// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hashicorp/go-tfe"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/cacheutil"
	"github.com/tfboot/tfboot/internal/config"
	"github.com/tfboot/tfboot/internal/log"
)

// stateCacheSub builds the cache subdirectory path for a state object.
func (st *Stack) stateCacheSub(key string) []string {
	return []string{st.BucketName(), key}
}

// purgeStateCache drops cache entries older than the configured age.
func purgeStateCache() error {
	cleanHours, _ := config.GetInt("cache.clean")
	return cacheutil.Purge(cleanHours)
}

// StateBody fetches one version of a state object, reading through the body
// cache.
func (st *Stack) StateBody(ctx context.Context, key, versionID string) ([]byte, error) {
	if err := purgeStateCache(); err != nil {
		log.WithError(err).Warnf("failed to purge cache")
	}

	if entry, ok := cacheutil.Read(st.stateCacheSub(key), versionID); ok {
		return entry.Data, nil
	}

	result, err := st.S3.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket:    awsv2.String(st.BucketName()),
		Key:       awsv2.String(key),
		VersionId: awsv2.String(versionID),
	})
	if err != nil {
		return nil, awsx.FriendlyAWS(err, st.errctx("get object", "state version", versionID))
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read state body: %w", err)
	}

	if err := cacheutil.Write(st.stateCacheSub(key), versionID, data); err != nil {
		log.WithError(err).Errorf("error writing to cache")
	}

	return data, nil
}

// StateVersions lists versions of a state object, newest first. Each row
// carries the S3 version id, its timestamp, and the serial parsed from the
// document body. Versions older than the most recent delete marker are
// dropped, as are trailing versions with no serial. A limit <= 0 means
// unlimited.
func (st *Stack) StateVersions(ctx context.Context, key string, limit int) ([]*tfe.StateVersion, error) {
	paginator := s3v2.NewListObjectVersionsPaginator(st.S3, &s3v2.ListObjectVersionsInput{
		Bucket: awsv2.String(st.BucketName()),
		Prefix: awsv2.String(key),
	})

	var allDeleteMarkers []types.DeleteMarkerEntry
	var allVersions []types.ObjectVersion
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, awsx.FriendlyAWS(err, st.errctx("list object versions", "bucket", st.BucketName()))
		}
		allDeleteMarkers = append(allDeleteMarkers, page.DeleteMarkers...)
		allVersions = append(allVersions, page.Versions...)
	}

	var mostRecentDelete time.Time
	for _, d := range allDeleteMarkers {
		// This filters out tflock files. The prefix is literally a prefix so
		// both the actual state file versions and any lock files they might
		// have, are returned by the AWS API.
		if d.Key == nil || *d.Key != key {
			if d.Key != nil {
				log.Debugf("Throwing away delete marker %s", *d.Key)
			}
			continue
		}
		if d.LastModified != nil && d.LastModified.After(mostRecentDelete) {
			mostRecentDelete = *d.LastModified
		}
	}

	combinedVersions := []*tfe.StateVersion{}
	for _, v := range allVersions {
		if v.Key == nil || *v.Key != key {
			if v.Key != nil {
				log.Debugf("Throwing away %s", *v.Key)
			}
			continue
		}
		if v.VersionId == nil || v.LastModified == nil {
			continue
		}
		if v.LastModified.Before(mostRecentDelete) {
			continue
		}

		body, err := st.StateBody(ctx, key, *v.VersionId)
		if err != nil {
			log.WithError(err).Errorf("s3 get object failed")
			continue
		}

		combinedVersions = append(combinedVersions, &tfe.StateVersion{
			ID:        *v.VersionId,
			CreatedAt: *v.LastModified,
			Serial:    stateSerial(body),
		})
	}

	sort.Slice(combinedVersions, func(i, j int) bool {
		return combinedVersions[i].CreatedAt.After(combinedVersions[j].CreatedAt)
	})

	currentVersions := []*tfe.StateVersion{}
	for _, v := range combinedVersions {
		if v.Serial == 0 {
			break
		}
		currentVersions = append(currentVersions, v)
	}

	if limit > 0 && len(currentVersions) > limit {
		currentVersions = currentVersions[:limit]
	}

	return currentVersions, nil
}

// stateSerial pulls the serial out of a state document. Encrypted documents
// carry the serial in clear alongside encrypted_data, so no passphrase is
// needed here.
func stateSerial(body []byte) int64 {
	var doc map[string]interface{}
	_ = json.Unmarshal(body, &doc)

	switch s := doc["serial"].(type) {
	case float64:
		return int64(s)
	case int64:
		return s
	case int:
		return int64(s)
	default:
		return 0
	}
}
