// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/settings"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// WorkspaceValidator enforces membership in the fixed workspace set. Empty
// defers to detection and "default" is mapped to dev downstream.
func WorkspaceValidator(value any) error {
	ws, _ := value.(string)
	if ws == "" || ws == "default" || settings.IsWorkspace(ws) {
		return nil
	}
	return fmt.Errorf("must be one of %v", settings.Workspaces)
}

func BackendSourceValidator(value any) error {
	if value == "local" || value == "ssm" {
		return nil
	}
	return fmt.Errorf("must be one of [local ssm]")
}
