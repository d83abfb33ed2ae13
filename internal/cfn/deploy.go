// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cfn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	cfnv2 "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/tfboot/tfboot/internal/log"
)

// waitTimeout bounds stack waiters. S3 and DynamoDB converge in minutes,
// IAM propagation included.
const waitTimeout = 30 * time.Minute

// StackOutput is one output of a deployed stack, modeled for the dataset
// pipeline.
type StackOutput struct {
	ID          string `jsonapi:"primary,outputs"`
	Value       string `jsonapi:"attr,value"`
	Description string `jsonapi:"attr,description"`
}

// Deploy creates or updates the named stack from a template body and returns
// its outputs once the change completes.
func Deploy(ctx context.Context, svc *cfnv2.Client, name string, body []byte, params map[string]string) ([]*StackOutput, error) {
	var cfnParams []types.Parameter
	for k, v := range params {
		cfnParams = append(cfnParams, types.Parameter{
			ParameterKey:   awsv2.String(k),
			ParameterValue: awsv2.String(v),
		})
	}

	exists, err := stackExists(ctx, svc, name)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	describe := &cfnv2.DescribeStacksInput{StackName: awsv2.String(name)}

	if !exists {
		_, err = svc.CreateStack(ctx, &cfnv2.CreateStackInput{
			StackName:          awsv2.String(name),
			TemplateBody:       awsv2.String(string(body)),
			Parameters:         cfnParams,
			Capabilities:       []types.Capability{types.CapabilityCapabilityNamedIam},
			ClientRequestToken: awsv2.String(token),
		})
		if err != nil {
			return nil, fmt.Errorf("create stack %s: %w", name, err)
		}
		log.Infof("creating stack %s", name)

		waiter := cfnv2.NewStackCreateCompleteWaiter(svc)
		if err := waiter.Wait(ctx, describe, waitTimeout); err != nil {
			return nil, fmt.Errorf("stack %s did not reach CREATE_COMPLETE: %w", name, err)
		}
	} else {
		_, err = svc.UpdateStack(ctx, &cfnv2.UpdateStackInput{
			StackName:          awsv2.String(name),
			TemplateBody:       awsv2.String(string(body)),
			Parameters:         cfnParams,
			Capabilities:       []types.Capability{types.CapabilityCapabilityNamedIam},
			ClientRequestToken: awsv2.String(token),
		})
		if err != nil {
			if isNoUpdates(err) {
				log.Infof("stack %s is already up to date", name)
				return Outputs(ctx, svc, name)
			}
			return nil, fmt.Errorf("update stack %s: %w", name, err)
		}
		log.Infof("updating stack %s", name)

		waiter := cfnv2.NewStackUpdateCompleteWaiter(svc)
		if err := waiter.Wait(ctx, describe, waitTimeout); err != nil {
			return nil, fmt.Errorf("stack %s did not reach UPDATE_COMPLETE: %w", name, err)
		}
	}

	return Outputs(ctx, svc, name)
}

// Outputs describes the named stack, logs its status, and returns its
// outputs.
func Outputs(ctx context.Context, svc *cfnv2.Client, name string) ([]*StackOutput, error) {
	out, err := svc.DescribeStacks(ctx, &cfnv2.DescribeStacksInput{
		StackName: awsv2.String(name),
	})
	if err != nil {
		if isMissingStack(err) {
			return nil, fmt.Errorf("stack %s does not exist", name)
		}
		return nil, fmt.Errorf("describe stack %s: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s does not exist", name)
	}

	st := out.Stacks[0]
	log.Infof("stack %s is %s", name, st.StackStatus)

	rows := make([]*StackOutput, 0, len(st.Outputs))
	for _, o := range st.Outputs {
		rows = append(rows, &StackOutput{
			ID:          awsv2.ToString(o.OutputKey),
			Value:       awsv2.ToString(o.OutputValue),
			Description: awsv2.ToString(o.Description),
		})
	}
	return rows, nil
}

// Delete tears the named stack down and waits for completion. A missing
// stack is tolerated so teardown can be rerun.
func Delete(ctx context.Context, svc *cfnv2.Client, name string) error {
	exists, err := stackExists(ctx, svc, name)
	if err != nil {
		return err
	}
	if !exists {
		log.Infof("stack %s is already gone", name)
		return nil
	}

	_, err = svc.DeleteStack(ctx, &cfnv2.DeleteStackInput{
		StackName:          awsv2.String(name),
		ClientRequestToken: awsv2.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("delete stack %s: %w", name, err)
	}
	log.Infof("deleting stack %s", name)

	waiter := cfnv2.NewStackDeleteCompleteWaiter(svc)
	err = waiter.Wait(ctx, &cfnv2.DescribeStacksInput{StackName: awsv2.String(name)}, waitTimeout)
	if err != nil {
		return fmt.Errorf("stack %s did not reach DELETE_COMPLETE: %w", name, err)
	}
	log.Infof("deleted stack %s", name)
	return nil
}

func stackExists(ctx context.Context, svc *cfnv2.Client, name string) (bool, error) {
	_, err := svc.DescribeStacks(ctx, &cfnv2.DescribeStacksInput{
		StackName: awsv2.String(name),
	})
	if err != nil {
		if isMissingStack(err) {
			return false, nil
		}
		return false, fmt.Errorf("describe stack %s: %w", name, err)
	}
	return true, nil
}

// DescribeStacks reports a missing stack as a ValidationError instead of a
// typed not-found shape.
func isMissingStack(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" &&
			strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return false
}

// UpdateStack with an identical template fails with this ValidationError.
func isNoUpdates(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" &&
			strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
	}
	return false
}
