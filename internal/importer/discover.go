// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package importer

import (
	"context"
	"fmt"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	iamv2 "github.com/aws/aws-sdk-go-v2/service/iam"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/naming"
)

// DiscoverBucket returns the first bucket carrying the resource prefix, or
// "" when none exists.
func (im *Importer) DiscoverBucket(ctx context.Context) (string, error) {
	out, err := im.st.S3.ListBuckets(ctx, &s3v2.ListBucketsInput{})
	if err != nil {
		return "", awsx.FriendlyAWS(err, awsx.ErrorContext{
			Profile:   im.st.Settings.Profile,
			Region:    im.st.Region,
			Operation: "list buckets",
		})
	}
	for _, b := range out.Buckets {
		if name := awsv2.ToString(b.Name); strings.HasPrefix(name, im.st.Prefix()) {
			return name, nil
		}
	}
	return "", nil
}

// DiscoverRole returns the first role carrying the resource prefix, or ""
// when none exists.
func (im *Importer) DiscoverRole(ctx context.Context) (string, error) {
	paginator := iamv2.NewListRolesPaginator(im.st.IAM, &iamv2.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", awsx.FriendlyAWS(err, awsx.ErrorContext{
				Profile:   im.st.Settings.Profile,
				Region:    im.st.Region,
				Operation: "list roles",
			})
		}
		for _, r := range page.Roles {
			if name := awsv2.ToString(r.RoleName); strings.HasPrefix(name, im.st.Prefix()) {
				return name, nil
			}
		}
	}
	return "", nil
}

// Pairs discovers the deployed resources and assembles the import pair list.
// Empty without error when the bucket or role is missing, since there is
// nothing sensible to import then.
func (im *Importer) Pairs(ctx context.Context) ([]Pair, error) {
	bucket, err := im.DiscoverBucket(ctx)
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		fmt.Fprintln(im.out, "Warning: no S3 bucket found matching the expected prefix")
		return nil, nil
	}
	fmt.Fprintf(im.out, "Found S3 bucket: %s\n", bucket)

	role, err := im.DiscoverRole(ctx)
	if err != nil {
		return nil, err
	}
	if role == "" {
		fmt.Fprintln(im.out, "Warning: no IAM role found matching the expected prefix")
		return nil, nil
	}
	fmt.Fprintf(im.out, "Found IAM role: %s\n", role)

	table := ""
	if name := im.st.LockTableName(); name != "" {
		exists, err := im.st.LockTableExists(ctx)
		if err != nil {
			return nil, err
		}
		if exists {
			fmt.Fprintf(im.out, "Found DynamoDB table: %s\n", name)
			table = name
		}
	}

	return pairList(bucket, role, table), nil
}

// pairList maps discovered resource names onto their configuration addresses.
// The lock table pair joins only when a table was discovered.
func pairList(bucket, role, table string) []Pair {
	pairs := []Pair{
		{"aws_s3_bucket.terraform_state", bucket},
		{"aws_s3_bucket_versioning.terraform_state_versioning", bucket},
		{"aws_s3_bucket_server_side_encryption_configuration.terraform_state_encryption", bucket},
		{"aws_s3_bucket_public_access_block.terraform_state_pab", bucket},
		{"aws_s3_bucket_lifecycle_configuration.terraform_state_lifecycle", bucket},
		{"aws_iam_role.terraform_state_role", role},
		{"aws_iam_role_policy.terraform_state_policy", role + ":" + naming.PolicyName},
	}
	if table != "" {
		pairs = append(pairs, Pair{"aws_dynamodb_table.terraform_state_locks", table})
	}
	return pairs
}
