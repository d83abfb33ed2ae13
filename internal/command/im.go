// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/importer"
	"github.com/tfboot/tfboot/internal/meta"
)

// imCommandAction is the action handler for the "im" subcommand. It discovers
// deployed state resources by prefix and imports them into the local
// Terraform state.
func imCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "im") {
		return nil
	}

	st, err := InitStackQuery(ctx, cmd)
	if err != nil {
		return err
	}

	im := importer.New(st, m.RootDir, os.Stdout)
	if !im.Preflight() {
		return fmt.Errorf("preflight failed; fix the reported checks and retry")
	}

	if !st.Settings.ImportExistingResources && !cmd.Bool("force") {
		fmt.Println("Import not needed: import_existing_resources is not set to true")
		return nil
	}

	fmt.Printf("Starting import process for workspace: %s\n", st.Settings.Workspace)
	fmt.Printf("Using AWS profile: %s\n", st.Settings.Profile)
	fmt.Printf("Resource prefix: %s\n\n", st.Prefix())

	pairs, err := im.Pairs(ctx)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Println("No resources found to import")
		return nil
	}
	fmt.Printf("Found %d resources to import:\n\n", len(pairs))

	dryRun := cmd.Bool("dry-run")
	results, err := im.Run(ctx, pairs, dryRun)
	if err != nil {
		return err
	}

	imported, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
		default:
			imported++
		}
	}
	if !dryRun {
		fmt.Printf("\n%d imported, %d skipped, %d failed\n", imported, skipped, failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(pairs))
	}
	return nil
}

// imCommandBuilder constructs the cli.Command for "im", wiring metadata,
// flags, and action handlers.
func imCommandBuilder(meta meta.Meta) *cli.Command {
	profile := NewProfileFlag("im", meta.Config.Source)
	profile.Value = "mfa"

	return &cli.Command{
		Name:      "im",
		Usage:     "import pre-existing state resources",
		UsageText: "tfboot im [RootDir] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show the import commands without running them",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "import even when import_existing_resources is false",
				HideDefault: true,
			},
			tldrFlag,
			NewProjectFlag("im", meta.Config.Source),
			NewOrgFlag("im", meta.Config.Source),
			NewRepoFlag("im", meta.Config.Source),
			profile,
			NewRegionFlag("im", meta.Config.Source),
			NewLockTableFlag("im", meta.Config.Source),
			workspaceFlag,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: imCommandAction,
	}
}
