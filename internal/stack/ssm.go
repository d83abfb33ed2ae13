// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ssmv2 "github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/log"
)

// ParameterDescription is set on the stored parameter.
const ParameterDescription = "Terraform backend configuration template (replace WORKLOAD with the workload name)"

// ReadParameter fetches the stored backend-configuration template. Returns
// ok=false when the parameter does not exist.
func (st *Stack) ReadParameter(ctx context.Context) (string, bool, error) {
	out, err := st.SSM.GetParameter(ctx, &ssmv2.GetParameterInput{
		Name:           awsv2.String(st.ParameterName()),
		WithDecryption: awsv2.Bool(true),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, awsx.FriendlyAWS(err, st.errctx("get parameter", "parameter", st.ParameterName()))
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, nil
	}
	return *out.Parameter.Value, true, nil
}

// ParameterInSync reports whether the stored template matches the rendered
// one. A missing parameter reads as out of sync.
func (st *Stack) ParameterInSync(ctx context.Context) (bool, error) {
	stored, ok, err := st.ReadParameter(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return stored == string(st.BackendHCL("")), nil
}

// EnsureParameter writes the backend-configuration template as a
// SecureString, overwriting a drifted value.
func (st *Stack) EnsureParameter(ctx context.Context) (bool, error) {
	inSync, err := st.ParameterInSync(ctx)
	if err != nil {
		return false, err
	}
	if inSync {
		log.Debugf("parameter in sync: %s", st.ParameterName())
		return false, nil
	}

	_, err = st.SSM.PutParameter(ctx, &ssmv2.PutParameterInput{
		Name:        awsv2.String(st.ParameterName()),
		Value:       awsv2.String(string(st.BackendHCL(""))),
		Type:        ssmtypes.ParameterTypeSecureString,
		Overwrite:   awsv2.Bool(true),
		Description: awsv2.String(ParameterDescription),
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("put parameter", "parameter", st.ParameterName()))
	}
	log.Infof("stored backend configuration at %s", st.ParameterName())
	return true, nil
}

// DeleteParameter removes the backend-configuration parameter. Absence is
// tolerated so teardown can be rerun.
func (st *Stack) DeleteParameter(ctx context.Context) error {
	_, err := st.SSM.DeleteParameter(ctx, &ssmv2.DeleteParameterInput{
		Name: awsv2.String(st.ParameterName()),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			log.Debugf("parameter already gone: %s", st.ParameterName())
			return nil
		}
		return awsx.FriendlyAWS(err, st.errctx("delete parameter", "parameter", st.ParameterName()))
	}
	log.Infof("deleted parameter %s", st.ParameterName())
	return nil
}
