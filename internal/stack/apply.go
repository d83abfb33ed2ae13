// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"
	"fmt"

	"github.com/tfboot/tfboot/internal/log"
)

// ApplyOptions tunes a converge run.
type ApplyOptions struct {
	SkipParameter bool
}

// DestroyOptions tunes a teardown run.
type DestroyOptions struct {
	Purge      bool
	KeepBucket bool
}

// Apply converges every component of the stack in dependency order. Each step
// is idempotent, so a failed run can simply be rerun.
func (st *Stack) Apply(ctx context.Context, opts ApplyOptions) error {
	steps := []struct {
		name string
		skip bool
		fn   func(context.Context) (bool, error)
	}{
		{"bucket", false, st.EnsureBucket},
		{"versioning", false, st.EnsureBucketVersioning},
		{"encryption", false, st.EnsureBucketEncryption},
		{"public access block", false, st.EnsureBucketPublicAccessBlock},
		{"lifecycle", false, st.EnsureBucketLifecycle},
		{"role", false, st.EnsureRole},
		{"role policy", false, st.EnsureRolePolicy},
		{"parameter", opts.SkipParameter, st.EnsureParameter},
		{"lock table", false, st.EnsureLockTable},
	}

	for _, step := range steps {
		if step.skip {
			log.Debugf("skipping %s", step.name)
			continue
		}
		if _, err := step.fn(ctx); err != nil {
			return fmt.Errorf("converge %s: %w", step.name, err)
		}
	}
	return nil
}

// Destroy tears the stack down in reverse dependency order. With Purge set,
// all state object versions are deleted first so the bucket delete can
// succeed. Every step tolerates absence, so a failed run can be rerun.
func (st *Stack) Destroy(ctx context.Context, opts DestroyOptions) error {
	if err := st.DeleteParameter(ctx); err != nil {
		return err
	}
	if err := st.DeleteRole(ctx); err != nil {
		return err
	}
	if err := st.DeleteLockTable(ctx); err != nil {
		return err
	}

	if opts.KeepBucket {
		log.Infof("keeping bucket %s", st.BucketName())
		return nil
	}

	exists, err := st.BucketExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		log.Debugf("bucket already gone: %s", st.BucketName())
		return nil
	}
	if opts.Purge {
		if _, err := st.PurgeBucket(ctx); err != nil {
			return err
		}
	}
	return st.DeleteBucket(ctx)
}
