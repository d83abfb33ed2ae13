// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import "context"

// Action describes one step a converge run would take, shaped for the common
// query output path.
type Action struct {
	ID   string `jsonapi:"primary,actions"`
	Type string `jsonapi:"attr,type"`
	Name string `jsonapi:"attr,name"`
	Op   string `jsonapi:"attr,op"`
}

// Action operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpNoop   = "noop"
)

// Plan probes the stack and reports what a converge run would do, one action
// per component. Missing components plan as create, drifted ones as update.
func (st *Stack) Plan(ctx context.Context) ([]*Action, error) {
	resources, err := st.Status(ctx)
	if err != nil {
		return nil, err
	}

	actions := make([]*Action, 0, len(resources))
	for _, r := range resources {
		actions = append(actions, &Action{
			ID:   r.ID,
			Type: r.Type,
			Name: r.Name,
			Op:   opFor(r.Status),
		})
	}
	return actions, nil
}

// opFor maps a resource status to the converge operation that resolves it.
func opFor(status string) string {
	switch status {
	case StatusMissing:
		return OpCreate
	case StatusDrift:
		return OpUpdate
	default:
		return OpNoop
	}
}
