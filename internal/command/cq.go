// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/apex/log"
	cfnv2 "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/urfave/cli/v3"

	awsx "github.com/tfboot/tfboot/internal/aws"
	"github.com/tfboot/tfboot/internal/cfn"
	"github.com/tfboot/tfboot/internal/meta"
	"github.com/tfboot/tfboot/internal/naming"
	"github.com/tfboot/tfboot/internal/settings"
)

// cqDefaultAttrs specifies the default attributes displayed for stack
// outputs.
var cqDefaultAttrs = []string{".id", "value"}

// cqCommandAction is the action handler for the "cq" subcommand. The default
// mode renders the CloudFormation template set to disk; --deploy, --status,
// and --delete drive the deployed stack instead.
func cqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "cq") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf((*cfn.StackOutput)(nil)).Elem()) {
		return nil
	}

	switch {
	case cmd.Bool("deploy"):
		return cqDeploy(ctx, cmd)
	case cmd.Bool("status"):
		return cqStatus(ctx, cmd)
	case cmd.Bool("delete"):
		return cqDelete(ctx, cmd)
	default:
		return cqWrite(cmd)
	}
}

// cqWrite renders the template set into the target directory.
func cqWrite(cmd *cli.Command) error {
	set, err := ResolveSettings(cmd)
	if err != nil {
		return err
	}

	files, err := cfn.RenderSet(set)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Infof("wrote %s", path)
	}
	return nil
}

// cqDeploy creates or updates the stack. Without --template-base-url the
// whole stack rides in one template body; with it the nested parent is
// deployed against the hosted children.
func cqDeploy(ctx context.Context, cmd *cli.Command) error {
	set, err := ResolveSettings(cmd)
	if err != nil {
		return err
	}
	svc, err := cqClient(ctx, set)
	if err != nil {
		return err
	}

	params := map[string]string{
		"ProjectName":  set.ProjectName,
		"Organization": set.Organization,
		"Environment":  set.Workspace,
	}

	tpl := cfn.Merged(set)
	if base := cmd.String("template-base-url"); base != "" {
		tpl = cfn.Parent(set)
		params["TemplateBaseURL"] = base
	}
	body, err := tpl.Render()
	if err != nil {
		return err
	}

	name := naming.StackName(set.ProjectName, set.Workspace)
	outputs, err := cfn.Deploy(ctx, svc, name, body, params)
	if err != nil {
		return err
	}
	return cqEmit(cmd, outputs)
}

// cqStatus describes the deployed stack and emits its outputs.
func cqStatus(ctx context.Context, cmd *cli.Command) error {
	set, err := ResolveSettings(cmd)
	if err != nil {
		return err
	}
	svc, err := cqClient(ctx, set)
	if err != nil {
		return err
	}

	outputs, err := cfn.Outputs(ctx, svc, naming.StackName(set.ProjectName, set.Workspace))
	if err != nil {
		return err
	}
	return cqEmit(cmd, outputs)
}

// cqDelete tears the deployed stack down.
func cqDelete(ctx context.Context, cmd *cli.Command) error {
	set, err := ResolveSettings(cmd)
	if err != nil {
		return err
	}
	svc, err := cqClient(ctx, set)
	if err != nil {
		return err
	}

	return cfn.Delete(ctx, svc, naming.StackName(set.ProjectName, set.Workspace))
}

func cqEmit(cmd *cli.Command, outputs []*cfn.StackOutput) error {
	attrs := BuildAttrs(cmd, cqDefaultAttrs...)
	return EmitJSONAPISlice(outputs, attrs, cmd)
}

// cqClient builds a CloudFormation client honoring the stack settings.
func cqClient(ctx context.Context, set settings.Settings) (*cfnv2.Client, error) {
	var opts []awsx.Option
	if set.Profile != "" {
		opts = append(opts, awsx.WithProfile(set.Profile))
	}
	if set.Region != "" {
		opts = append(opts, awsx.WithRegion(set.Region))
	}
	cfg, err := awsx.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsx.NewCloudFormation(cfg), nil
}

// cqCommandBuilder constructs the cli.Command for "cq", wiring metadata,
// flags, and action handlers.
func cqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "cq",
		Usage:     "cloudformation query",
		UsageText: "tfboot cq [RootDir] [options]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "delete",
				Usage:       "delete the deployed stack",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "deploy",
				Usage:       "create or update the stack from the rendered templates",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory the template set is written to",
				Value: "./cloudformation",
			},
			&cli.BoolFlag{
				Name:        "status",
				Usage:       "describe the deployed stack and print its outputs",
				HideDefault: true,
			},
			&cli.StringFlag{
				Name:  "template-base-url",
				Usage: "base URL of the uploaded child templates",
				Value: "",
			},
		}, stackFlags(meta, "cq")...),
		Action: cqCommandAction,
		Meta:   meta,
	}).Build()
}
