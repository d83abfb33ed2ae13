// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"

	"github.com/tfboot/tfboot/internal/naming"
)

// Resource is one provisioned component of the backend stack, shaped for the
// common query output path.
type Resource struct {
	ID     string `jsonapi:"primary,resources"`
	Type   string `jsonapi:"attr,type"`
	Name   string `jsonapi:"attr,name"`
	Status string `jsonapi:"attr,status"`
	Detail string `jsonapi:"attr,detail"`
}

// Resource status values.
const (
	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusDrift   = "drift"
)

// Status probes every component of the stack and reports one row per
// component. Bucket sub-configurations read as missing while the bucket
// itself is absent, and as drift when the bucket exists but the setting is
// not in its desired state.
func (st *Stack) Status(ctx context.Context) ([]*Resource, error) {
	var rows []*Resource
	add := func(id, typ, name, status, detail string) {
		rows = append(rows, &Resource{
			ID:     id,
			Type:   typ,
			Name:   name,
			Status: status,
			Detail: detail,
		})
	}

	bucketExists, err := st.BucketExists(ctx)
	if err != nil {
		return nil, err
	}
	if bucketExists {
		add("bucket", "s3-bucket", st.BucketName(), StatusOK, "")
	} else {
		add("bucket", "s3-bucket", st.BucketName(), StatusMissing, "")
	}

	bucketConfig := func(id, typ, driftDetail string, probe func(context.Context) (bool, error)) error {
		if !bucketExists {
			add(id, typ, st.BucketName(), StatusMissing, "")
			return nil
		}
		ok, err := probe(ctx)
		if err != nil {
			return err
		}
		if ok {
			add(id, typ, st.BucketName(), StatusOK, "")
		} else {
			add(id, typ, st.BucketName(), StatusDrift, driftDetail)
		}
		return nil
	}

	if err := bucketConfig("versioning", "s3-versioning",
		"versioning not enabled", st.BucketVersioningEnabled); err != nil {
		return nil, err
	}
	if err := bucketConfig("encryption", "s3-encryption",
		"default encryption is not AES256", st.BucketEncrypted); err != nil {
		return nil, err
	}
	if err := bucketConfig("public-access-block", "s3-public-access-block",
		"public access is not fully blocked", st.BucketPublicAccessBlocked); err != nil {
		return nil, err
	}
	if err := bucketConfig("lifecycle", "s3-lifecycle",
		"noncurrent-expiry rule absent", st.BucketLifecycleConfigured); err != nil {
		return nil, err
	}

	roleExists, err := st.RoleExists(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case !roleExists:
		add("role", "iam-role", st.RoleName(), StatusMissing, "")
		add("policy", "iam-policy", naming.PolicyName, StatusMissing, "")
	default:
		trustOK, err := st.TrustPolicyInSync(ctx)
		if err != nil {
			return nil, err
		}
		if trustOK {
			add("role", "iam-role", st.RoleName(), StatusOK, "")
		} else {
			add("role", "iam-role", st.RoleName(), StatusDrift, "trust policy differs")
		}

		policyExists, err := st.RolePolicyExists(ctx)
		if err != nil {
			return nil, err
		}
		if !policyExists {
			add("policy", "iam-policy", naming.PolicyName, StatusMissing, "")
		} else {
			policyOK, err := st.RolePolicyInSync(ctx)
			if err != nil {
				return nil, err
			}
			if policyOK {
				add("policy", "iam-policy", naming.PolicyName, StatusOK, "")
			} else {
				add("policy", "iam-policy", naming.PolicyName, StatusDrift, "policy document differs")
			}
		}
	}

	stored, paramExists, err := st.ReadParameter(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case !paramExists:
		add("parameter", "ssm-parameter", st.ParameterName(), StatusMissing, "")
	case stored != string(st.BackendHCL("")):
		add("parameter", "ssm-parameter", st.ParameterName(), StatusDrift, "stored template differs")
	default:
		add("parameter", "ssm-parameter", st.ParameterName(), StatusOK, "")
	}

	if table := st.LockTableName(); table != "" {
		tableExists, err := st.LockTableExists(ctx)
		if err != nil {
			return nil, err
		}
		if tableExists {
			add("lock-table", "dynamodb-table", table, StatusOK, "")
		} else {
			add("lock-table", "dynamodb-table", table, StatusMissing, "")
		}
	}

	return rows, nil
}
