// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	assert.Equal(t, "terraform-core-state-files-dev", Prefix("terraform-core", "dev"))
	assert.Equal(t, "acme-state-files-prod", Prefix("acme", "prod"))
}

func TestDerivedNames(t *testing.T) {
	project, workspace := "acme", "staging"

	assert.Equal(t, "acme-state-files-staging-123456789012",
		BucketName(project, workspace, "123456789012"))
	assert.Equal(t, "acme-state-files-staging-role", RoleName(project, workspace))
	assert.Equal(t, "acme-state-files-staging-locks", LockTableName(project, workspace))
	assert.Equal(t, "acme-state-files-staging", StackName(project, workspace))
	assert.Equal(t, "/acme/staging/backend-configuration",
		ParameterName(project, workspace))
}

func TestStateKey(t *testing.T) {
	tests := []struct {
		name     string
		workload string
		want     string
	}{
		{"empty keeps placeholder", "", "WORKLOAD/terraform.tfstate"},
		{"workload substituted", "billing", "billing/terraform.tfstate"},
		{"nested workload", "teams/billing", "teams/billing/terraform.tfstate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateKey(tt.workload))
		})
	}
}

func TestWorkspaceStateKey(t *testing.T) {
	assert.Equal(t, "billing/terraform.tfstate", WorkspaceStateKey("default", "billing"))
	assert.Equal(t, "env:/dev/billing/terraform.tfstate", WorkspaceStateKey("dev", "billing"))
	assert.Equal(t, "env:/prod/WORKLOAD/terraform.tfstate", WorkspaceStateKey("prod", ""))
}

func TestRepoPath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://github.com/acme/infra", "acme/infra"},
		{"trailing slash", "https://github.com/acme/infra/", "acme/infra"},
		{"dot git", "https://github.com/acme/infra.git", "acme/infra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepoPath(tt.url))
		})
	}
}

func TestOIDCSubject(t *testing.T) {
	assert.Equal(t, "repo:acme/infra:*", OIDCSubject("https://github.com/acme/infra"))
}

func TestARNs(t *testing.T) {
	assert.Equal(t,
		"arn:aws:iam::123456789012:oidc-provider/token.actions.githubusercontent.com",
		OIDCProviderARN("123456789012"))
	assert.Equal(t,
		"arn:aws:iam::123456789012:role/acme-state-files-dev-role",
		RoleARN("123456789012", "acme-state-files-dev-role"))
	assert.Equal(t, "arn:aws:s3:::b", BucketARN("b"))
}
