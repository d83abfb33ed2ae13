// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"
	"strings"

	ddbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	iamv2 "github.com/aws/aws-sdk-go-v2/service/iam"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	ssmv2 "github.com/aws/aws-sdk-go-v2/service/ssm"
	stsv2 "github.com/aws/aws-sdk-go-v2/service/sts"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/backendcfg"
	"github.com/tfboot/tfboot/internal/cacheutil"
	"github.com/tfboot/tfboot/internal/log"
	"github.com/tfboot/tfboot/internal/naming"
	"github.com/tfboot/tfboot/internal/settings"
)

// identityCacheHours bounds how long a cached caller identity is trusted.
const identityCacheHours = 12

// Stack binds resolved settings to the AWS clients that manage the
// state-files resources of one project/workspace pair.
type Stack struct {
	Settings  settings.Settings
	AccountID string
	Region    string

	S3  *s3v2.Client
	IAM *iamv2.Client
	SSM *ssmv2.Client
	DDB *ddbv2.Client
}

// New loads AWS config per the settings, resolves the caller identity, and
// returns a Stack ready for ensure/inspect/delete operations.
func New(ctx context.Context, s settings.Settings) (*Stack, error) {
	var cfgOpts []awsx.Option
	if s.Profile != "" {
		cfgOpts = append(cfgOpts, awsx.WithProfile(s.Profile))
	}
	if s.Region != "" {
		cfgOpts = append(cfgOpts, awsx.WithRegion(s.Region))
	}
	cfg, err := awsx.LoadAWSConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	st := &Stack{
		Settings: s,
		Region:   cfg.Region,
		S3:       awsx.NewS3(cfg),
		IAM:      awsx.NewIAM(cfg),
		SSM:      awsx.NewSSM(cfg),
		DDB:      awsx.NewDynamoDB(cfg),
	}

	st.AccountID, err = resolveAccountID(ctx, awsx.NewSTS(cfg), s)
	if err != nil {
		return nil, awsx.FriendlyAWS(err, awsx.ErrorContext{
			Profile:   s.Profile,
			Region:    cfg.Region,
			Operation: "get caller identity",
		})
	}

	log.Debugf("stack bound: account=%s region=%s prefix=%s",
		st.AccountID, st.Region, st.Prefix())
	return st, nil
}

// resolveAccountID returns the caller's account id, consulting the disk cache
// first. Identity is stable per profile/region so a short TTL is safe.
func resolveAccountID(ctx context.Context, svc *stsv2.Client, s settings.Settings) (string, error) {
	if err := cacheutil.Purge(identityCacheHours); err != nil {
		log.WithError(err).Warnf("failed to purge cache")
	}

	cacheKey := fmt.Sprintf("sts-identity/%s/%s", s.Profile, s.Region)
	if entry, ok := cacheutil.Read([]string{"identity"}, cacheKey); ok {
		return string(entry.Data), nil
	}

	out, err := svc.GetCallerIdentity(ctx, &stsv2.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	accountID := strings.TrimSpace(*out.Account)

	if err := cacheutil.Write([]string{"identity"}, cacheKey, []byte(accountID)); err != nil {
		log.WithError(err).Warnf("failed to cache caller identity")
	}
	return accountID, nil
}

// Prefix returns the shared resource name prefix.
func (st *Stack) Prefix() string {
	return naming.Prefix(st.Settings.ProjectName, st.Settings.Workspace)
}

// BucketName returns the state bucket name.
func (st *Stack) BucketName() string {
	return naming.BucketName(st.Settings.ProjectName, st.Settings.Workspace, st.AccountID)
}

// RoleName returns the state role name.
func (st *Stack) RoleName() string {
	return naming.RoleName(st.Settings.ProjectName, st.Settings.Workspace)
}

// RoleARN returns the state role ARN.
func (st *Stack) RoleARN() string {
	return naming.RoleARN(st.AccountID, st.RoleName())
}

// ParameterName returns the SSM parameter name.
func (st *Stack) ParameterName() string {
	return naming.ParameterName(st.Settings.ProjectName, st.Settings.Workspace)
}

// LockTableName returns the DynamoDB lock table name, or "" when state
// locking rides on the native lockfile. The "auto" sentinel picks the
// conventional name.
func (st *Stack) LockTableName() string {
	switch st.Settings.LockTable {
	case "":
		return ""
	case "auto":
		return naming.LockTableName(st.Settings.ProjectName, st.Settings.Workspace)
	default:
		return st.Settings.LockTable
	}
}

// BackendConfig returns the backend configuration this stack advertises.
// workload substitutes the WORKLOAD placeholder in the state key when set.
func (st *Stack) BackendConfig(workload string) backendcfg.Config {
	cfg := backendcfg.Config{
		Bucket:  st.BucketName(),
		Key:     naming.StateKey(workload),
		Region:  st.Region,
		Encrypt: true,
		RoleARN: st.RoleARN(),
	}
	if table := st.LockTableName(); table != "" {
		cfg.DynamoDBTable = table
	} else {
		cfg.UseLockfile = true
	}
	return cfg
}

// BackendHCL renders the backend configuration HCL with provenance header.
func (st *Stack) BackendHCL(workload string) []byte {
	return backendcfg.Render(st.BackendConfig(workload), backendcfg.Provenance{
		Project:   st.Settings.ProjectName,
		Workspace: st.Settings.Workspace,
	})
}

// errctx builds the common FriendlyAWS context for an operation on a named
// resource.
func (st *Stack) errctx(operation, resource, name string) awsx.ErrorContext {
	return awsx.ErrorContext{
		Profile:   st.Settings.Profile,
		Region:    st.Region,
		Operation: operation,
		Resource:  resource,
		Name:      name,
	}
}
