// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"encoding/json"
	"net/url"
	"reflect"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	iamv2 "github.com/aws/aws-sdk-go-v2/service/iam"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/log"
	"github.com/tfboot/tfboot/internal/naming"
)

// RoleDescription is set on the state role at create time.
const RoleDescription = "Terraform state access for GitHub Actions and account principals"

// RoleExists probes the state role.
func (st *Stack) RoleExists(ctx context.Context) (bool, error) {
	_, err := st.IAM.GetRole(ctx, &iamv2.GetRoleInput{
		RoleName: awsv2.String(st.RoleName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get role", "role", st.RoleName()))
	}
	return true, nil
}

// TrustPolicyInSync reports whether the live assume-role policy matches the
// rendered trust policy. A missing role reads as out of sync.
func (st *Stack) TrustPolicyInSync(ctx context.Context) (bool, error) {
	want, err := st.TrustPolicy()
	if err != nil {
		return false, err
	}

	out, err := st.IAM.GetRole(ctx, &iamv2.GetRoleInput{
		RoleName: awsv2.String(st.RoleName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get role", "role", st.RoleName()))
	}
	return policyDocsEqual(decodePolicyDocument(out.Role.AssumeRolePolicyDocument), string(want)), nil
}

// EnsureRole creates the state role or converges its trust policy.
func (st *Stack) EnsureRole(ctx context.Context) (bool, error) {
	want, err := st.TrustPolicy()
	if err != nil {
		return false, err
	}

	out, err := st.IAM.GetRole(ctx, &iamv2.GetRoleInput{
		RoleName: awsv2.String(st.RoleName()),
	})
	if err != nil {
		if !awsx.IsNotFound(err) {
			return false, awsx.FriendlyAWS(err, st.errctx("get role", "role", st.RoleName()))
		}
		_, err = st.IAM.CreateRole(ctx, &iamv2.CreateRoleInput{
			RoleName:                 awsv2.String(st.RoleName()),
			AssumeRolePolicyDocument: awsv2.String(string(want)),
			Description:              awsv2.String(RoleDescription),
		})
		if err != nil {
			return false, awsx.FriendlyAWS(err, st.errctx("create role", "role", st.RoleName()))
		}
		log.Infof("created role %s", st.RoleName())
		return true, nil
	}

	if policyDocsEqual(decodePolicyDocument(out.Role.AssumeRolePolicyDocument), string(want)) {
		log.Debugf("trust policy in sync: %s", st.RoleName())
		return false, nil
	}

	_, err = st.IAM.UpdateAssumeRolePolicy(ctx, &iamv2.UpdateAssumeRolePolicyInput{
		RoleName:       awsv2.String(st.RoleName()),
		PolicyDocument: awsv2.String(string(want)),
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("update assume role policy", "role", st.RoleName()))
	}
	log.Infof("updated trust policy on %s", st.RoleName())
	return true, nil
}

// RolePolicyExists probes the inline state-access policy.
func (st *Stack) RolePolicyExists(ctx context.Context) (bool, error) {
	_, err := st.IAM.GetRolePolicy(ctx, &iamv2.GetRolePolicyInput{
		RoleName:   awsv2.String(st.RoleName()),
		PolicyName: awsv2.String(naming.PolicyName),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get role policy", "policy", naming.PolicyName))
	}
	return true, nil
}

// RolePolicyInSync reports whether the inline policy matches the rendered
// document. A missing role or policy reads as out of sync.
func (st *Stack) RolePolicyInSync(ctx context.Context) (bool, error) {
	want, err := st.RolePolicy()
	if err != nil {
		return false, err
	}

	out, err := st.IAM.GetRolePolicy(ctx, &iamv2.GetRolePolicyInput{
		RoleName:   awsv2.String(st.RoleName()),
		PolicyName: awsv2.String(naming.PolicyName),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("get role policy", "policy", naming.PolicyName))
	}
	return policyDocsEqual(decodePolicyDocument(out.PolicyDocument), string(want)), nil
}

// EnsureRolePolicy puts the inline state-access policy when missing or
// drifted. PutRolePolicy replaces the document wholesale.
func (st *Stack) EnsureRolePolicy(ctx context.Context) (bool, error) {
	inSync, err := st.RolePolicyInSync(ctx)
	if err != nil {
		return false, err
	}
	if inSync {
		log.Debugf("role policy in sync: %s", naming.PolicyName)
		return false, nil
	}

	doc, err := st.RolePolicy()
	if err != nil {
		return false, err
	}
	_, err = st.IAM.PutRolePolicy(ctx, &iamv2.PutRolePolicyInput{
		RoleName:       awsv2.String(st.RoleName()),
		PolicyName:     awsv2.String(naming.PolicyName),
		PolicyDocument: awsv2.String(string(doc)),
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put role policy", "policy", naming.PolicyName))
	}
	log.Infof("attached policy %s to %s", naming.PolicyName, st.RoleName())
	return true, nil
}

// DeleteRole removes the inline policy and then the role. Both absences are
// tolerated so teardown can be rerun.
func (st *Stack) DeleteRole(ctx context.Context) error {
	_, err := st.IAM.DeleteRolePolicy(ctx, &iamv2.DeleteRolePolicyInput{
		RoleName:   awsv2.String(st.RoleName()),
		PolicyName: awsv2.String(naming.PolicyName),
	})
	if err != nil && !awsx.IsNotFound(err) {
		return awsx.FriendlyAWS(err, st.errctx("delete role policy", "policy", naming.PolicyName))
	}

	_, err = st.IAM.DeleteRole(ctx, &iamv2.DeleteRoleInput{
		RoleName: awsv2.String(st.RoleName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			log.Debugf("role already gone: %s", st.RoleName())
			return nil
		}
		return awsx.FriendlyAWS(err, st.errctx("delete role", "role", st.RoleName()))
	}
	log.Infof("deleted role %s", st.RoleName())
	return nil
}

// IAM returns policy documents URL-encoded.
func decodePolicyDocument(doc *string) string {
	if doc == nil {
		return ""
	}
	if decoded, err := url.QueryUnescape(*doc); err == nil {
		return decoded
	}
	return *doc
}

func policyDocsEqual(a, b string) bool {
	var av, bv any
	if err := json.Unmarshal([]byte(a), &av); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(b), &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
