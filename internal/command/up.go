// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/stack"
)

// upDefaultAttrs specifies the default attributes displayed for planned
// actions in the "up --dry-run" output.
var upDefaultAttrs = []string{".id", "name", "op"}

// upCommandAction is the action handler for the "up" subcommand. It converges
// the state-files stack, or with --dry-run reports what a converge would do
// without changing anything.
func upCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("dry-run") {
		fn := func(ctx context.Context, cmd *cli.Command) ([]*stack.Action, error) {
			st, err := InitStackQuery(ctx, cmd)
			if err != nil {
				return nil, err
			}
			return st.Plan(ctx)
		}

		return NewQueryActionRunner(
			"up",
			reflect.TypeOf((*stack.Action)(nil)).Elem(),
			upDefaultAttrs,
			fn,
		).Run(ctx, cmd)
	}

	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr or the schema.
	if ShortCircuitTLDR(ctx, cmd, "up") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf((*stack.Action)(nil)).Elem()) {
		return nil
	}

	st, err := InitStackQuery(ctx, cmd)
	if err != nil {
		return err
	}

	opts := stack.ApplyOptions{SkipParameter: cmd.Bool("skip-parameter")}
	if err := st.Apply(ctx, opts); err != nil {
		return err
	}

	log.Infof("stack %s is up", st.Prefix())
	if !opts.SkipParameter {
		fmt.Fprintf(os.Stdout, "backend configuration stored in %s\n", st.ParameterName())
	}
	return nil
}

// upCommandBuilder constructs the cli.Command for "up", wiring metadata,
// flags, and action handlers.
func upCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "up",
		Usage:     "provision the state backend stack",
		UsageText: "tfboot up [RootDir] [options]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show the converge plan without changing anything",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "skip-parameter",
				Usage:       "do not store the backend configuration parameter",
				HideDefault: true,
			},
		}, stackFlags(meta, "up")...),
		Action: upCommandAction,
		Meta:   meta,
	}).Build()
}
