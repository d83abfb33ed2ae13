// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-tfe"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/differ"
	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/naming"
	"github.com/tfboot/tfboot/internal/stack"
	"github.com/tfboot/tfboot/internal/state"
	"github.com/tfboot/tfboot/internal/svutil"
)

// svqDefaultAttrs specifies the default attributes displayed for state
// versions in the "svq" command output.
var svqDefaultAttrs = []string{".id", "serial", "created-at"}

// svqCommandAction is the action handler for the "svq" subcommand. It lists
// versions of a state object in the state bucket, or in --diff mode resolves
// two versions and renders their difference.
func svqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "svq") {
		return nil
	}

	if cmd.Bool("diff") {
		return svqDiff(ctx, cmd)
	}

	fn := func(ctx context.Context, cmd *cli.Command) ([]*tfe.StateVersion, error) {
		st, err := InitStackQuery(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return st.StateVersions(ctx, resolveStateKey(cmd.String("key")), int(cmd.Int("limit")))
	}

	return NewQueryActionRunner(
		"svq",
		reflect.TypeOf((*tfe.StateVersion)(nil)).Elem(),
		svqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// svqDiff compares two state versions selected by the args following --diff.
// No args means previous against current, one arg compares it against
// current, and "+" opens an interactive picker.
func svqDiff(ctx context.Context, cmd *cli.Command) error {
	st, err := InitStackQuery(ctx, cmd)
	if err != nil {
		return err
	}

	key := resolveStateKey(cmd.String("key"))
	svSpecs := []string{"CSV~1", "CSV~0"}

	diffArgs := differ.ParseDiffArgs(ctx, cmd)
	switch len(diffArgs) {
	case 0:
		// No args, so use the last two states.
	case 1:
		if strings.HasPrefix(diffArgs[0], "+") {
			versions, err := st.StateVersions(ctx, key, int(cmd.Int("limit")))
			if err != nil {
				return fmt.Errorf("failed to get state version list: %w", err)
			}

			selected := differ.SelectStateVersions(versions)
			log.Debugf("selected: %d", len(selected))

			if len(selected) < 2 {
				return nil
			}
			svSpecs[0] = selected[1].ID
			svSpecs[1] = selected[0].ID
		} else {
			svSpecs[0] = diffArgs[0]
		}
	case 2:
		svSpecs = diffArgs
	}

	states, err := svqStates(ctx, cmd, st, key, svSpecs...)
	if err != nil {
		return err
	}
	if len(states) < 2 {
		return nil
	}

	return differ.Diff(ctx, cmd, states)
}

// svqStates resolves version specs against the bucket's version list and
// returns each state body, decrypted when the document calls for it.
func svqStates(ctx context.Context, cmd *cli.Command, st *stack.Stack, key string, specs ...string) ([][]byte, error) {
	candidates, err := st.StateVersions(ctx, key, 0)
	if err != nil {
		return nil, err
	}

	versions, err := svutil.Resolve(candidates, specs...)
	if err != nil {
		return nil, err
	}
	log.Debugf("versions: %v", versions)

	var results [][]byte
	for _, v := range versions {
		var body []byte
		if svutil.IsLocal(v) {
			body, err = svutil.ReadLocal(v)
		} else {
			body, err = st.StateBody(ctx, key, v.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get state: %w", err)
		}

		body, err = state.MaybeDecrypt(body, cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, body)
	}

	return results, nil
}

// resolveStateKey maps a --key value to a state object key. A bare name is
// treated as a workload and expanded through the key template; anything with
// a slash is already a full key.
func resolveStateKey(v string) string {
	if strings.Contains(v, "/") {
		return v
	}
	return naming.StateKey(v)
}

// svqCommandBuilder constructs the cli.Command for "svq", wiring metadata,
// flags, and action handlers.
func svqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "svq",
		Usage:     "state version query",
		UsageText: "tfboot svq [RootDir] --key WORKLOAD [options]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Aliases:  []string{"k"},
				Usage:    "workload name or full state object key",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "find difference between state versions",
				Value: false,
			},
			&cli.StringFlag{
				Name:   "diff_filter",
				Hidden: true,
				Value:  "check_results",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "limit state versions returned",
				Value: 99999,
			},
			&cli.StringFlag{
				Name:    "passphrase",
				Aliases: []string{"p"},
				Usage:   "encrypted state passphrase",
			},
		}, stackFlags(meta, "svq")...),
		Action: svqCommandAction,
		Meta:   meta,
	}).Build()
}
