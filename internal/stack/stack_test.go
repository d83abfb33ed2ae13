// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package stack

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfboot/tfboot/internal/settings"
)

// newTestStack builds a Stack with resolved settings and no AWS clients, which
// is all the rendering and naming paths need.
func newTestStack(lockTable string) *Stack {
	return &Stack{
		Settings: settings.Settings{
			ProjectName:   "acme-platform",
			Organization:  "acme",
			RepositoryURL: "https://github.com/acme/acme-platform",
			Workspace:     "dev",
			LockTable:     lockTable,
		},
		AccountID: "210987654321",
		Region:    "us-west-2",
	}
}

func TestTrustPolicy(t *testing.T) {
	st := newTestStack("")

	raw, err := st.TrustPolicy()
	require.NoError(t, err)

	var doc policyDocument
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statement, 2)

	oidc := doc.Statement[0]
	assert.Equal(t, "GitHubOIDC", oidc.Sid)
	assert.Equal(t, "Allow", oidc.Effect)
	assert.Equal(t,
		"arn:aws:iam::210987654321:oidc-provider/token.actions.githubusercontent.com",
		oidc.Principal["Federated"])
	assert.Equal(t, []string{"sts:AssumeRoleWithWebIdentity"}, oidc.Action)
	assert.Equal(t, "sts.amazonaws.com",
		oidc.Condition["StringEquals"]["token.actions.githubusercontent.com:aud"])
	assert.Equal(t, "repo:acme/acme-platform:*",
		oidc.Condition["StringLike"]["token.actions.githubusercontent.com:sub"])

	root := doc.Statement[1]
	assert.Equal(t, "AccountRoot", root.Sid)
	assert.Equal(t, "arn:aws:iam::210987654321:root", root.Principal["AWS"])
	assert.Equal(t, []string{"sts:AssumeRole"}, root.Action)
}

func TestRolePolicy(t *testing.T) {
	tests := []struct {
		name           string
		lockTable      string
		wantStatements int
		wantLockARN    string
	}{
		{
			name:           "lockfile mode has no dynamodb statement",
			lockTable:      "",
			wantStatements: 2,
		},
		{
			name:           "auto lock table adds dynamodb statement",
			lockTable:      "auto",
			wantStatements: 3,
			wantLockARN:    "arn:aws:dynamodb:us-west-2:210987654321:table/acme-platform-state-files-dev-locks",
		},
		{
			name:           "explicit lock table name is used verbatim",
			lockTable:      "shared-locks",
			wantStatements: 3,
			wantLockARN:    "arn:aws:dynamodb:us-west-2:210987654321:table/shared-locks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStack(tt.lockTable)

			raw, err := st.RolePolicy()
			require.NoError(t, err)

			var doc policyDocument
			require.NoError(t, json.Unmarshal(raw, &doc))
			require.Len(t, doc.Statement, tt.wantStatements)

			bucketARN := "arn:aws:s3:::acme-platform-state-files-dev-210987654321"
			assert.Equal(t, []string{bucketARN}, doc.Statement[0].Resource)
			assert.Contains(t, doc.Statement[0].Action, "s3:ListBucket")
			assert.Equal(t, []string{bucketARN + "/*"}, doc.Statement[1].Resource)
			assert.Contains(t, doc.Statement[1].Action, "s3:PutObject")

			if tt.wantLockARN != "" {
				assert.Equal(t, "StateLocking", doc.Statement[2].Sid)
				assert.Equal(t, []string{tt.wantLockARN}, doc.Statement[2].Resource)
			}
		})
	}
}

func TestPolicyDocsEqual(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "identical documents",
			a:    `{"Version":"2012-10-17","Statement":[]}`,
			b:    `{"Version":"2012-10-17","Statement":[]}`,
			want: true,
		},
		{
			name: "key order and whitespace are ignored",
			a:    `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"]}]}`,
			b:    `{ "Statement": [ { "Action": ["s3:GetObject"], "Effect": "Allow" } ], "Version": "2012-10-17" }`,
			want: true,
		},
		{
			name: "different actions",
			a:    `{"Statement":[{"Action":["s3:GetObject"]}]}`,
			b:    `{"Statement":[{"Action":["s3:PutObject"]}]}`,
			want: false,
		},
		{
			name: "invalid json never matches",
			a:    `{not json`,
			b:    `{not json`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policyDocsEqual(tt.a, tt.b))
		})
	}
}

func TestDecodePolicyDocument(t *testing.T) {
	encoded := "%7B%22Version%22%3A%222012-10-17%22%7D"
	assert.Equal(t, `{"Version":"2012-10-17"}`, decodePolicyDocument(&encoded))

	plain := `{"Version":"2012-10-17"}`
	assert.Equal(t, plain, decodePolicyDocument(&plain))

	assert.Equal(t, "", decodePolicyDocument(nil))
}

func TestStateSerial(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int64
	}{
		{
			name: "serial present",
			body: `{"version":4,"serial":42}`,
			want: 42,
		},
		{
			name: "serial absent",
			body: `{"version":4}`,
			want: 0,
		},
		{
			name: "not json",
			body: `garbage`,
			want: 0,
		},
		{
			name: "encrypted body still exposes serial",
			body: `{"serial":7,"encrypted_data":"abc123"}`,
			want: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateSerial([]byte(tt.body)))
		})
	}
}

func TestOpFor(t *testing.T) {
	assert.Equal(t, OpCreate, opFor(StatusMissing))
	assert.Equal(t, OpUpdate, opFor(StatusDrift))
	assert.Equal(t, OpNoop, opFor(StatusOK))
	assert.Equal(t, OpNoop, opFor("anything-else"))
}

func TestLockTableName(t *testing.T) {
	assert.Equal(t, "", newTestStack("").LockTableName())
	assert.Equal(t, "acme-platform-state-files-dev-locks", newTestStack("auto").LockTableName())
	assert.Equal(t, "shared-locks", newTestStack("shared-locks").LockTableName())
}

func TestBackendConfig(t *testing.T) {
	t.Run("lockfile mode", func(t *testing.T) {
		cfg := newTestStack("").BackendConfig("payments")

		assert.Equal(t, "acme-platform-state-files-dev-210987654321", cfg.Bucket)
		assert.Equal(t, "payments/terraform.tfstate", cfg.Key)
		assert.Equal(t, "us-west-2", cfg.Region)
		assert.True(t, cfg.Encrypt)
		assert.True(t, cfg.UseLockfile)
		assert.Empty(t, cfg.DynamoDBTable)
		assert.Equal(t, "arn:aws:iam::210987654321:role/acme-platform-state-files-dev-role", cfg.RoleARN)
	})

	t.Run("lock table supersedes lockfile", func(t *testing.T) {
		cfg := newTestStack("auto").BackendConfig("payments")

		assert.Equal(t, "acme-platform-state-files-dev-locks", cfg.DynamoDBTable)
		assert.False(t, cfg.UseLockfile)
	})
}

func TestBackendHCL(t *testing.T) {
	hcl := string(newTestStack("").BackendHCL(""))

	assert.True(t, strings.HasPrefix(hcl, "# tfboot: project=acme-platform workspace=dev"))
	assert.Contains(t, hcl, `bucket`)
	assert.Contains(t, hcl, "acme-platform-state-files-dev-210987654321")
	assert.Contains(t, hcl, "WORKLOAD/terraform.tfstate")
	assert.Contains(t, hcl, "use_lockfile")
}
