// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"context"

	"github.com/tfboot/tfboot/internal/naming"
	"github.com/tfboot/tfboot/internal/settings"
)

// Workspace is one member of the fixed workspace set, shaped for the common
// query output path. The id is the workspace name.
type Workspace struct {
	ID      string `jsonapi:"primary,workspaces"`
	Status  string `jsonapi:"attr,status"`
	Bucket  string `jsonapi:"attr,bucket"`
	Current string `jsonapi:"attr,current"`
}

// Workspace provisioning status values.
const (
	WorkspaceProvisioned   = "provisioned"
	WorkspaceUnprovisioned = "unprovisioned"
)

// Workspaces reports the fixed workspace set with a bucket presence probe per
// member. The stack's own workspace is marked current.
func (st *Stack) Workspaces(ctx context.Context) ([]*Workspace, error) {
	var rows []*Workspace
	for _, ws := range settings.Workspaces {
		bucket := naming.BucketName(st.Settings.ProjectName, ws, st.AccountID)

		exists, err := st.bucketExists(ctx, bucket)
		if err != nil {
			return nil, err
		}

		row := &Workspace{
			ID:     ws,
			Status: WorkspaceUnprovisioned,
			Bucket: bucket,
		}
		if exists {
			row.Status = WorkspaceProvisioned
		}
		if ws == st.Settings.Workspace {
			row.Current = "*"
		}
		rows = append(rows, row)
	}
	return rows, nil
}
