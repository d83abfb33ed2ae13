// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/config"
	"github.com/tfboot/tfboot/internal/settings"
	"github.com/tfboot/tfboot/internal/stack"
)

// ResolveSettings builds the project settings from flags, environment, config
// sources, and workspace detection against the command's root directory. The
// returned settings are defaulted and validated.
func ResolveSettings(cmd *cli.Command) (settings.Settings, error) {
	m := GetMeta(cmd)

	// The workspace flag wins, then the ::workspace RootDir override, then
	// detection the way the Terraform CLI does it.
	ws := cmd.String("workspace")
	if ws == "" {
		ws = m.Workspace
	}
	if ws == "" {
		ws = settings.DetectWorkspace(m.RootDir)
	}

	s := settings.Settings{
		ProjectName:   cmd.String("project"),
		Organization:  cmd.String("org"),
		RepositoryURL: cmd.String("repo"),
		Workspace:     ws,
		Region:        cmd.String("region"),
		Profile:       cmd.String("profile"),
		LockTable:     cmd.String("lock-table"),
	}
	if v, err := config.GetBool("import_existing_resources"); err == nil {
		s.ImportExistingResources = v
	}

	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}

	return s, nil
}

// InitStackQuery resolves the settings and binds the AWS-backed stack for
// them. It returns the stack or an error if initialization fails.
func InitStackQuery(ctx context.Context, cmd *cli.Command) (*stack.Stack, error) {
	s, err := ResolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	st, err := stack.New(ctx, s)
	if err != nil {
		return nil, err
	}
	log.Debugf("st: %v", st.Prefix())

	return st, nil
}
