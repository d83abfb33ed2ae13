// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"encoding/json"
	"fmt"

	"github.com/tfboot/tfboot/internal/naming"
)

// policyDocument is the JSON shape shared by trust and permission policies.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal map[string]string            `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// PolicyVersion is the IAM policy language version on every rendered
// document.
const PolicyVersion = "2012-10-17"

// TrustPolicy returns the assume-role document for the state role: GitHub
// Actions workflows of the configured repository via OIDC, plus the account
// root for human break-glass access.
func (st *Stack) TrustPolicy() ([]byte, error) {
	doc := policyDocument{
		Version: PolicyVersion,
		Statement: []policyStatement{
			{
				Sid:    "GitHubOIDC",
				Effect: "Allow",
				Principal: map[string]string{
					"Federated": naming.OIDCProviderARN(st.AccountID),
				},
				Action: []string{"sts:AssumeRoleWithWebIdentity"},
				Condition: map[string]map[string]string{
					"StringEquals": {
						naming.OIDCProviderHost + ":aud": naming.OIDCAudience,
					},
					"StringLike": {
						naming.OIDCProviderHost + ":sub": naming.OIDCSubject(st.Settings.RepositoryURL),
					},
				},
			},
			{
				Sid:    "AccountRoot",
				Effect: "Allow",
				Principal: map[string]string{
					"AWS": fmt.Sprintf("arn:aws:iam::%s:root", st.AccountID),
				},
				Action: []string{"sts:AssumeRole"},
			},
		},
	}
	return json.Marshal(doc)
}

// RolePolicy returns the inline permission document granting state access on
// the bucket, scoped object access, and lock-table access when configured.
func (st *Stack) RolePolicy() ([]byte, error) {
	bucket := st.BucketName()
	doc := policyDocument{
		Version: PolicyVersion,
		Statement: []policyStatement{
			{
				Sid:    "ListStateBucket",
				Effect: "Allow",
				Action: []string{
					"s3:ListBucket",
					"s3:GetBucketVersioning",
					"s3:ListBucketVersions",
				},
				Resource: []string{naming.BucketARN(bucket)},
			},
			{
				Sid:    "ReadWriteStateObjects",
				Effect: "Allow",
				Action: []string{
					"s3:GetObject",
					"s3:GetObjectVersion",
					"s3:PutObject",
					"s3:DeleteObject",
				},
				Resource: []string{naming.BucketARN(bucket) + "/*"},
			},
		},
	}

	if table := st.LockTableName(); table != "" {
		doc.Statement = append(doc.Statement, policyStatement{
			Sid:    "StateLocking",
			Effect: "Allow",
			Action: []string{
				"dynamodb:GetItem",
				"dynamodb:PutItem",
				"dynamodb:DeleteItem",
			},
			Resource: []string{fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s",
				st.Region, st.AccountID, table)},
		})
	}

	return json.Marshal(doc)
}
