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

// sqDefaultAttrs specifies the default attributes displayed for stack
// resources in the "sq" command output.
var sqDefaultAttrs = []string{".id", "name", "status", "detail"}

// sqCommandAction is the action handler for the "sq" subcommand. It probes
// every resource of the state-files stack and reports one row per resource
// with its status (ok, missing, drift).
func sqCommandAction(ctx context.Context, cmd *cli.Command) error {
	fn := func(ctx context.Context, cmd *cli.Command) ([]*stack.Resource, error) {
		st, err := InitStackQuery(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return st.Status(ctx)
	}

	return NewQueryActionRunner(
		"sq",
		reflect.TypeOf((*stack.Resource)(nil)).Elem(),
		sqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// sqCommandBuilder constructs the cli.Command for "sq", wiring metadata,
// flags, and action handlers.
func sqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "sq",
		Usage:     "stack query",
		UsageText: "tfboot sq [RootDir] [options]",
		Flags:     stackFlags(meta, "sq"),
		Action:    sqCommandAction,
		Meta:      meta,
	}).Build()
}
