// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/stack"
)

// downCommandAction is the action handler for the "down" subcommand. It tears
// down the state-files stack after an interactive confirmation, unless --yes
// was given.
func downCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "down") {
		return nil
	}

	st, err := InitStackQuery(ctx, cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := ConfirmPhrase(st.Settings.ProjectName)
		if err != nil {
			return err
		}
		if !ok {
			log.Infof("aborted, %s left untouched", st.Prefix())
			return nil
		}
	}

	opts := stack.DestroyOptions{
		Purge:      cmd.Bool("purge"),
		KeepBucket: cmd.Bool("keep-bucket"),
	}
	if err := st.Destroy(ctx, opts); err != nil {
		return err
	}

	log.Infof("stack %s is down", st.Prefix())
	return nil
}

// downCommandBuilder constructs the cli.Command for "down", wiring metadata,
// flags, and action handlers.
func downCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "down",
		Usage:     "remove the state backend stack",
		UsageText: "tfboot down [RootDir] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "keep-bucket",
				Usage:       "remove the role and parameter but leave the bucket",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "purge",
				Usage:       "delete every object and version before removing the bucket",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the interactive confirmation",
				HideDefault: true,
			},
			tldrFlag,
		}, stackFlags(meta, "down")...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: downCommandAction,
	}
}
