// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"fmt"
	"strings"
)

const (
	// PolicyName is the fixed name of the inline policy attached to the
	// state role. It carries no prefix so that prefix discovery of the role
	// never collides with it.
	PolicyName = "terraform-state-files-policy"

	// ParameterLeaf is the last element of the SSM parameter name.
	ParameterLeaf = "backend-configuration"

	// StateKeyPlaceholder is the key template stored in the backend
	// configuration. Consumers replace WORKLOAD with their own name.
	StateKeyPlaceholder = "WORKLOAD/terraform.tfstate"

	// WorkspaceKeyPrefix mirrors the Terraform S3 backend default.
	WorkspaceKeyPrefix = "env:"

	// OIDCProviderHost is the GitHub Actions token issuer.
	OIDCProviderHost = "token.actions.githubusercontent.com"

	// OIDCAudience is the audience claim GitHub presents to AWS.
	OIDCAudience = "sts.amazonaws.com"
)

// Prefix returns the name prefix shared by every state-files resource of a
// project/workspace pair. All discovery is done against this prefix.
func Prefix(project, workspace string) string {
	return fmt.Sprintf("%s-state-files-%s", project, workspace)
}

// BucketName returns the state bucket name. The account id suffix keeps the
// name globally unique while staying discoverable by prefix.
func BucketName(project, workspace, accountID string) string {
	return Prefix(project, workspace) + "-" + accountID
}

// RoleName returns the state role name.
func RoleName(project, workspace string) string {
	return Prefix(project, workspace) + "-role"
}

// LockTableName returns the optional DynamoDB lock table name.
func LockTableName(project, workspace string) string {
	return Prefix(project, workspace) + "-locks"
}

// StackName returns the CloudFormation stack name.
func StackName(project, workspace string) string {
	return Prefix(project, workspace)
}

// ParameterName returns the SSM parameter name holding the backend
// configuration for a project/workspace pair.
func ParameterName(project, workspace string) string {
	return fmt.Sprintf("/%s/%s/%s", project, workspace, ParameterLeaf)
}

// StateKey returns the state object key for a workload, i.e. the key template
// with the WORKLOAD placeholder substituted.
func StateKey(workload string) string {
	if workload == "" {
		return StateKeyPlaceholder
	}
	return strings.Replace(StateKeyPlaceholder, "WORKLOAD", workload, 1)
}

// WorkspaceStateKey returns the key the Terraform S3 backend actually writes
// for a non-default workspace.
func WorkspaceStateKey(workspace, workload string) string {
	if workspace == "" || workspace == "default" {
		return StateKey(workload)
	}
	return WorkspaceKeyPrefix + "/" + workspace + "/" + StateKey(workload)
}

// RepoPath extracts the "org/repo" path from a GitHub repository URL.
func RepoPath(repositoryURL string) string {
	p := strings.TrimPrefix(repositoryURL, "https://github.com/")
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, ".git")
	return p
}

// OIDCSubject returns the GitHub Actions subject claim pattern trusted by the
// state role. Any ref of the repository qualifies.
func OIDCSubject(repositoryURL string) string {
	return "repo:" + RepoPath(repositoryURL) + ":*"
}

// OIDCProviderARN returns the account's GitHub OIDC provider ARN.
func OIDCProviderARN(accountID string) string {
	return "arn:aws:iam::" + accountID + ":oidc-provider/" + OIDCProviderHost
}

// RoleARN builds an IAM role ARN.
func RoleARN(accountID, roleName string) string {
	return "arn:aws:iam::" + accountID + ":role/" + roleName
}

// BucketARN builds an S3 bucket ARN.
func BucketARN(bucket string) string {
	return "arn:aws:s3:::" + bucket
}
