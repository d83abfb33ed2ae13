// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ddbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/log"
)

// LockKeyAttribute is the hash key Terraform's S3 backend locks on.
const LockKeyAttribute = "LockID"

const lockTableWaitTimeout = 5 * time.Minute

// LockTableExists probes the lock table. Always false when locking is
// disabled.
func (st *Stack) LockTableExists(ctx context.Context) (bool, error) {
	table := st.LockTableName()
	if table == "" {
		return false, nil
	}
	_, err := st.DDB.DescribeTable(ctx, &ddbv2.DescribeTableInput{
		TableName: awsv2.String(table),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			return false, nil
		}
		return false, awsx.FriendlyAWS(err, st.errctx("describe table", "table", table))
	}
	return true, nil
}

// EnsureLockTable creates the lock table and waits for it to become active.
// No-op when locking is disabled.
func (st *Stack) EnsureLockTable(ctx context.Context) (bool, error) {
	table := st.LockTableName()
	if table == "" {
		log.Debugf("state locking disabled, no lock table")
		return false, nil
	}

	exists, err := st.LockTableExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		log.Debugf("lock table exists: %s", table)
		return false, nil
	}

	_, err = st.DDB.CreateTable(ctx, &ddbv2.CreateTableInput{
		TableName: awsv2.String(table),
		AttributeDefinitions: []ddbtypes.AttributeDefinition{{
			AttributeName: awsv2.String(LockKeyAttribute),
			AttributeType: ddbtypes.ScalarAttributeTypeS,
		}},
		KeySchema: []ddbtypes.KeySchemaElement{{
			AttributeName: awsv2.String(LockKeyAttribute),
			KeyType:       ddbtypes.KeyTypeHash,
		}},
		BillingMode: ddbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("create table", "table", table))
	}

	waiter := ddbv2.NewTableExistsWaiter(st.DDB)
	err = waiter.Wait(ctx, &ddbv2.DescribeTableInput{
		TableName: awsv2.String(table),
	}, lockTableWaitTimeout)
	if err != nil {
		return false, awsx.FriendlyAWS(err, st.errctx("wait for table", "table", table))
	}
	log.Infof("created lock table %s", table)
	return true, nil
}

// DeleteLockTable removes the lock table. No-op when locking is disabled,
// absence is tolerated so teardown can be rerun.
func (st *Stack) DeleteLockTable(ctx context.Context) error {
	table := st.LockTableName()
	if table == "" {
		return nil
	}

	_, err := st.DDB.DeleteTable(ctx, &ddbv2.DeleteTableInput{
		TableName: awsv2.String(table),
	})
	if err != nil {
		if awsx.IsNotFound(err) {
			log.Debugf("lock table already gone: %s", table)
			return nil
		}
		return awsx.FriendlyAWS(err, st.errctx("delete table", "table", table))
	}
	log.Infof("deleted lock table %s", table)
	return nil
}
