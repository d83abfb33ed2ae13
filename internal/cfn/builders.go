// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cfn

import (
	"fmt"

	"github.com/tfboot/tfboot/internal/naming"
	"github.com/tfboot/tfboot/internal/settings"
	"github.com/tfboot/tfboot/internal/stack"
)

// Template filenames of the nested set, as written to disk and as referenced
// off TemplateBaseURL by the parent.
const (
	ParentTemplate  = "main.yaml"
	StorageTemplate = "storage.yaml"
	IAMTemplate     = "iam.yaml"
	SSMTemplate     = "ssm.yaml"
)

// Fn::Sub forms of the values the naming package normally receives, so every
// derived name below stays in lockstep with the CLI's own naming.
const (
	paramProject = "${ProjectName}"
	paramOrg     = "${Organization}"
	paramEnv     = "${Environment}"
	paramAccount = "${AWS::AccountId}"
	paramRegion  = "${AWS::Region}"
)

// File pairs a template filename with its rendered body.
type File struct {
	Name string
	Body []byte
}

// RenderSet renders the nested template set: the parent plus one child per
// resource group.
func RenderSet(s settings.Settings) ([]File, error) {
	parts := []struct {
		name string
		tpl  Template
	}{
		{ParentTemplate, Parent(s)},
		{StorageTemplate, Storage(s)},
		{IAMTemplate, IAM(s)},
		{SSMTemplate, SSM(s)},
	}

	files := make([]File, 0, len(parts))
	for _, p := range parts {
		body, err := p.tpl.Render()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
		files = append(files, File{Name: p.name, Body: body})
	}
	return files, nil
}

// Parent returns main.yaml, which wires the child templates together as
// nested stacks and republishes their outputs.
func Parent(s settings.Settings) Template {
	passthrough := map[string]any{
		"ProjectName":  Ref("ProjectName"),
		"Organization": Ref("Organization"),
		"Environment":  Ref("Environment"),
	}

	nested := func(file string) Resource {
		return Resource{
			Type: "AWS::CloudFormation::Stack",
			Properties: map[string]any{
				"TemplateURL": Sub("${TemplateBaseURL}/" + file),
				"Parameters":  passthrough,
			},
		}
	}

	outputs := map[string]TemplateOutput{
		"StateBucketName": {
			Description: "Name of the state bucket",
			Value:       GetAtt("StorageStack", "Outputs.StateBucketName"),
		},
		"StateBucketArn": {
			Description: "ARN of the state bucket",
			Value:       GetAtt("StorageStack", "Outputs.StateBucketArn"),
		},
		"StateRoleArn": {
			Description: "ARN of the state access role",
			Value:       GetAtt("IamStack", "Outputs.StateRoleArn"),
		},
		"StateRoleName": {
			Description: "Name of the state access role",
			Value:       GetAtt("IamStack", "Outputs.StateRoleName"),
		},
		"BackendConfigurationParameterName": {
			Description: "SSM parameter holding the backend configuration",
			Value:       GetAtt("SsmStack", "Outputs.BackendConfigurationParameterName"),
		},
		"BackendConfigurationHCL": {
			Description: "Backend configuration template",
			Value:       GetAtt("SsmStack", "Outputs.BackendConfigurationHCL"),
		},
	}
	if _, ok := lockTableExpr(s); ok {
		outputs["LockTableName"] = TemplateOutput{
			Description: "Name of the state lock table",
			Value:       GetAtt("StorageStack", "Outputs.LockTableName"),
		}
	}

	return Template{
		AWSTemplateFormatVersion: formatVersion,
		Description:              "Terraform remote state backend for " + s.ProjectName,
		Parameters:               parameters(s, true),
		Resources: map[string]Resource{
			"StorageStack": nested(StorageTemplate),
			"IamStack":     nested(IAMTemplate),
			"SsmStack":     nested(SSMTemplate),
		},
		Outputs: outputs,
	}
}

// Storage returns storage.yaml: the versioned state bucket and the optional
// lock table.
func Storage(s settings.Settings) Template {
	resources := map[string]Resource{
		"StateBucket": {
			Type: "AWS::S3::Bucket",
			// State history outlives the stack.
			DeletionPolicy: "Retain",
			Properties: map[string]any{
				"BucketName": Sub(naming.BucketName(paramProject, paramEnv, paramAccount)),
				"VersioningConfiguration": map[string]any{
					"Status": "Enabled",
				},
				"BucketEncryption": map[string]any{
					"ServerSideEncryptionConfiguration": []any{map[string]any{
						"ServerSideEncryptionByDefault": map[string]any{
							"SSEAlgorithm": "AES256",
						},
					}},
				},
				"PublicAccessBlockConfiguration": map[string]any{
					"BlockPublicAcls":       true,
					"BlockPublicPolicy":     true,
					"IgnorePublicAcls":      true,
					"RestrictPublicBuckets": true,
				},
				"LifecycleConfiguration": map[string]any{
					"Rules": []any{map[string]any{
						"Id":     stack.LifecycleRuleID,
						"Status": "Enabled",
						"NoncurrentVersionExpiration": map[string]any{
							"NoncurrentDays": stack.NoncurrentExpireDays,
						},
						"AbortIncompleteMultipartUpload": map[string]any{
							"DaysAfterInitiation": stack.AbortMultipartDays,
						},
					}},
				},
			},
		},
	}
	outputs := map[string]TemplateOutput{
		"StateBucketName": {
			Description: "Name of the state bucket",
			Value:       Ref("StateBucket"),
		},
		"StateBucketArn": {
			Description: "ARN of the state bucket",
			Value:       GetAtt("StateBucket", "Arn"),
		},
	}

	if table, ok := lockTableExpr(s); ok {
		resources["LockTable"] = Resource{
			Type: "AWS::DynamoDB::Table",
			Properties: map[string]any{
				"TableName": Sub(table),
				"AttributeDefinitions": []any{map[string]any{
					"AttributeName": stack.LockKeyAttribute,
					"AttributeType": "S",
				}},
				"KeySchema": []any{map[string]any{
					"AttributeName": stack.LockKeyAttribute,
					"KeyType":       "HASH",
				}},
				"BillingMode": "PAY_PER_REQUEST",
			},
		}
		outputs["LockTableName"] = TemplateOutput{
			Description: "Name of the state lock table",
			Value:       Ref("LockTable"),
		}
	}

	return Template{
		AWSTemplateFormatVersion: formatVersion,
		Description:              "Terraform state storage for " + s.ProjectName,
		Parameters:               parameters(s, false),
		Resources:                resources,
		Outputs:                  outputs,
	}
}

// IAM returns iam.yaml: the OIDC-trusted state role and its inline policy.
func IAM(s settings.Settings) Template {
	bucketARN := naming.BucketARN(naming.BucketName(paramProject, paramEnv, paramAccount))

	statements := []any{
		map[string]any{
			"Sid":    "ListStateBucket",
			"Effect": "Allow",
			"Action": []any{
				"s3:ListBucket",
				"s3:GetBucketVersioning",
				"s3:ListBucketVersions",
			},
			"Resource": []any{Sub(bucketARN)},
		},
		map[string]any{
			"Sid":    "ReadWriteStateObjects",
			"Effect": "Allow",
			"Action": []any{
				"s3:GetObject",
				"s3:GetObjectVersion",
				"s3:PutObject",
				"s3:DeleteObject",
			},
			"Resource": []any{Sub(bucketARN + "/*")},
		},
	}
	if table, ok := lockTableExpr(s); ok {
		statements = append(statements, map[string]any{
			"Sid":    "StateLocking",
			"Effect": "Allow",
			"Action": []any{
				"dynamodb:GetItem",
				"dynamodb:PutItem",
				"dynamodb:DeleteItem",
			},
			"Resource": []any{
				Sub("arn:aws:dynamodb:" + paramRegion + ":" + paramAccount + ":table/" + table),
			},
		})
	}

	resources := map[string]Resource{
		"StateRole": {
			Type: "AWS::IAM::Role",
			Properties: map[string]any{
				"RoleName":    Sub(naming.RoleName(paramProject, paramEnv)),
				"Description": stack.RoleDescription,
				"AssumeRolePolicyDocument": map[string]any{
					"Version": stack.PolicyVersion,
					"Statement": []any{
						map[string]any{
							"Sid":    "GitHubOIDC",
							"Effect": "Allow",
							"Principal": map[string]any{
								"Federated": Sub(naming.OIDCProviderARN(paramAccount)),
							},
							"Action": []any{"sts:AssumeRoleWithWebIdentity"},
							"Condition": map[string]any{
								"StringEquals": map[string]any{
									naming.OIDCProviderHost + ":aud": naming.OIDCAudience,
								},
								"StringLike": map[string]any{
									naming.OIDCProviderHost + ":sub": Sub(subjectClaim(s)),
								},
							},
						},
						map[string]any{
							"Sid":    "AccountRoot",
							"Effect": "Allow",
							"Principal": map[string]any{
								"AWS": Sub("arn:aws:iam::" + paramAccount + ":root"),
							},
							"Action": []any{"sts:AssumeRole"},
						},
					},
				},
				"Policies": []any{map[string]any{
					"PolicyName": naming.PolicyName,
					"PolicyDocument": map[string]any{
						"Version":   stack.PolicyVersion,
						"Statement": statements,
					},
				}},
			},
		},
	}

	return Template{
		AWSTemplateFormatVersion: formatVersion,
		Description:              "Terraform state access role for " + s.ProjectName,
		Parameters:               parameters(s, false),
		Resources:                resources,
		Outputs: map[string]TemplateOutput{
			"StateRoleArn": {
				Description: "ARN of the state access role",
				Value:       GetAtt("StateRole", "Arn"),
			},
			"StateRoleName": {
				Description: "Name of the state access role",
				Value:       Ref("StateRole"),
			},
		},
	}
}

// SSM returns ssm.yaml: the stored backend-configuration parameter.
func SSM(s settings.Settings) Template {
	resources := map[string]Resource{
		"BackendConfigurationParameter": {
			Type: "AWS::SSM::Parameter",
			Properties: map[string]any{
				"Name": Sub(naming.ParameterName(paramProject, paramEnv)),
				// AWS::SSM::Parameter cannot create SecureString; the next
				// up run upgrades the stored type.
				"Type":        "String",
				"Value":       Sub(backendHCL(s)),
				"Description": stack.ParameterDescription,
			},
		},
	}

	return Template{
		AWSTemplateFormatVersion: formatVersion,
		Description:              "Terraform backend configuration parameter for " + s.ProjectName,
		Parameters:               parameters(s, false),
		Resources:                resources,
		Outputs: map[string]TemplateOutput{
			"BackendConfigurationParameterName": {
				Description: "SSM parameter holding the backend configuration",
				Value:       Ref("BackendConfigurationParameter"),
			},
			"BackendConfigurationHCL": {
				Description: "Backend configuration template",
				Value:       GetAtt("BackendConfigurationParameter", "Value"),
			},
		},
	}
}

// Merged returns the whole stack as a single template, used when no base URL
// is available to host the child templates.
func Merged(s settings.Settings) Template {
	t := Template{
		AWSTemplateFormatVersion: formatVersion,
		Description:              "Terraform remote state backend for " + s.ProjectName,
		Parameters:               parameters(s, false),
		Resources:                map[string]Resource{},
		Outputs:                  map[string]TemplateOutput{},
	}
	for _, child := range []Template{Storage(s), IAM(s), SSM(s)} {
		for id, r := range child.Resources {
			t.Resources[id] = r
		}
		for id, o := range child.Outputs {
			t.Outputs[id] = o
		}
	}
	return t
}

// parameters returns the input surface shared by every template in the set.
// Defaults are baked from the resolved settings so a rendered template
// deploys standalone.
func parameters(s settings.Settings, parent bool) map[string]Parameter {
	p := map[string]Parameter{
		"ProjectName": {
			Type:        "String",
			Description: "Project the state resources belong to",
			Default:     s.ProjectName,
		},
		"Organization": {
			Type:        "String",
			Description: "GitHub organization trusted through OIDC",
			Default:     s.Organization,
		},
		"Environment": {
			Type:          "String",
			Description:   "Workspace the state resources serve",
			Default:       s.Workspace,
			AllowedValues: settings.Workspaces,
		},
	}
	if parent {
		p["TemplateBaseURL"] = Parameter{
			Type:        "String",
			Description: "Base URL the child templates were uploaded to",
		}
	}
	return p
}

// lockTableExpr resolves the lock table name the way Stack.LockTableName
// does, in Fn::Sub form for the "auto" sentinel.
func lockTableExpr(s settings.Settings) (string, bool) {
	switch s.LockTable {
	case "":
		return "", false
	case "auto":
		return naming.LockTableName(paramProject, paramEnv), true
	default:
		return s.LockTable, true
	}
}

// subjectClaim returns the Fn::Sub expression for the trusted GitHub sub
// claim. The conventional org/project repository stays parameterized; an
// overridden repository URL is baked in as rendered.
func subjectClaim(s settings.Settings) string {
	conventional := s.Organization + "/" + s.ProjectName
	if path := naming.RepoPath(s.RepositoryURL); path != conventional {
		return "repo:" + path + ":*"
	}
	return "repo:" + paramOrg + "/" + paramProject + ":*"
}

// backendHCL returns the backend configuration template in Fn::Sub form, the
// parameterized equivalent of what package stack stores.
func backendHCL(s settings.Settings) string {
	bucket := naming.BucketName(paramProject, paramEnv, paramAccount)
	role := naming.RoleARN(paramAccount, naming.RoleName(paramProject, paramEnv))

	lock := "use_lockfile = true"
	if table, ok := lockTableExpr(s); ok {
		lock = fmt.Sprintf("dynamodb_table = %q", table)
	}

	return fmt.Sprintf(`# tfboot: project=%s workspace=%s
bucket  = "%s"
key     = "%s"
region  = "%s"
encrypt = true
%s

assume_role {
  role_arn = "%s"
}
`, paramProject, paramEnv, bucket, naming.StateKeyPlaceholder, paramRegion, lock, role)
}
