// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/backendcfg"
	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/stack"
)

// bqCommandAction is the action handler for the "bq" subcommand. It emits the
// backend configuration HCL, either computed from the resolved settings or
// fetched from the stored parameter, and can check the two against each other.
func bqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "bq") {
		return nil
	}

	st, err := InitStackQuery(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("name") {
		fmt.Fprintln(os.Stdout, st.ParameterName())
		return nil
	}

	if cmd.Bool("check") {
		return bqCheck(ctx, cmd, st)
	}

	workload := cmd.String("key")

	var doc []byte
	switch cmd.String("source") {
	case "ssm":
		stored, ok, err := st.ReadParameter(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("parameter %s not found; run up first", st.ParameterName())
		}
		doc = []byte(stored)
		// The stored value is the template form; substitute the workload the
		// same way the computed path does.
		if workload != "" {
			doc = bytes.Replace(doc, []byte("WORKLOAD"), []byte(workload), 1)
		}
	default:
		doc = st.BackendHCL(workload)
	}

	if file := cmd.String("write"); file != "" {
		if err := os.WriteFile(file, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		log.Infof("wrote %s", file)
		return nil
	}

	fmt.Fprint(os.Stdout, string(doc))
	return nil
}

// bqCheck compares the computed backend configuration against the stored
// parameter attribute by attribute and fails on drift.
func bqCheck(ctx context.Context, cmd *cli.Command, st *stack.Stack) error {
	stored, ok, err := st.ReadParameter(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("parameter %s not found; run up first", st.ParameterName())
	}

	storedCfg, err := backendcfg.Parse([]byte(stored), st.ParameterName())
	if err != nil {
		return fmt.Errorf("failed to parse stored configuration: %w", err)
	}

	if diffs := backendcfg.Diff(st.BackendConfig(""), storedCfg); len(diffs) > 0 {
		for _, d := range diffs {
			fmt.Fprintln(os.Stdout, d)
		}
		return fmt.Errorf("backend configuration drift: %d attribute(s) differ", len(diffs))
	}

	fmt.Fprintln(os.Stdout, "The backend configurations are identical.")
	return nil
}

// bqCommandBuilder constructs the cli.Command for "bq", wiring metadata,
// flags, and action handlers.
func bqCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "bq",
		Usage:     "backend configuration query",
		UsageText: "tfboot bq [RootDir] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "check",
				Usage:       "compare computed against stored configuration",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "workload name substituted into the state key",
			},
			&cli.BoolFlag{
				Name:        "name",
				Usage:       "print the parameter name instead of the configuration",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "configuration source",
				Value: "local",
				Validator: func(value string) error {
					return FlagValidators(value, BackendSourceValidator)
				},
			},
			&cli.StringFlag{
				Name:  "write",
				Usage: "write the configuration to a file",
			},
			tldrFlag,
		}, stackFlags(meta, "bq")...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, cmd)
		},
		Action: bqCommandAction,
	}
}
