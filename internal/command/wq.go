// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/stack"
)

// wqDefaultAttrs specifies the default attributes displayed for workspaces
// in the "wq" command output.
var wqDefaultAttrs = []string{".id", "status", "current"}

// wqCommandAction is the action handler for the "wq" subcommand. It lists
// the fixed workspace set with a provisioning probe per workspace and marks
// the current one.
func wqCommandAction(ctx context.Context, cmd *cli.Command) error {
	fn := func(ctx context.Context, cmd *cli.Command) ([]*stack.Workspace, error) {
		st, err := InitStackQuery(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return st.Workspaces(ctx)
	}

	return NewQueryActionRunner(
		"wq",
		reflect.TypeOf((*stack.Workspace)(nil)).Elem(),
		wqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// wqCommandBuilder constructs the cli.Command for "wq", wiring metadata,
// flags, and action handlers.
func wqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "wq",
		Usage:     "workspace query",
		UsageText: "tfboot wq [RootDir] [options]",
		Flags:     stackFlags(meta, "wq"),
		Action:    wqCommandAction,
		Meta:      meta,
	}).Build()
}
