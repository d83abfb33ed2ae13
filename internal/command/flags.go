// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfboot/tfboot/internal/meta"
)

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}

	workspaceFlag *cli.StringFlag = &cli.StringFlag{
		Name:    "workspace",
		Aliases: []string{"w"},
		Usage:   "workspace holding the state resources. Overrides detection",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_WORKSPACE"),
			cli.EnvVar("TF_WORKSPACE"),
		),
		Value: "",
		Validator: func(value string) error {
			return FlagValidators(value, WorkspaceValidator)
		},
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewProjectFlag constructs a cli.StringFlag for the "project" flag,
// optionally namespaced to a command and config file. params[1] is the config
// file.
func NewProjectFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "project",
		Usage: "project whose state resources are managed",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_PROJECT"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewOrgFlag constructs a cli.StringFlag for the "org" flag, optionally
// namespaced to a command and config file. params[1] is the config file. The
// organization defaults to the project name when left empty.
func NewOrgFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "org",
		Usage: "GitHub organization owning the repository",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_ORG"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewRepoFlag constructs a cli.StringFlag for the "repo" flag, optionally
// namespaced to a command and config file. The repository URL scopes the
// GitHub OIDC trust subject of the state role.
func NewRepoFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "repo",
		Usage: "repository URL trusted by the state role",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_REPO"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewProfileFlag constructs a cli.StringFlag for the "profile" flag,
// optionally namespaced to a command and config file.
func NewProfileFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "profile",
		Usage: "AWS profile to use for all calls",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_PROFILE"),
			cli.EnvVar("AWS_PROFILE"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewRegionFlag constructs a cli.StringFlag for the "region" flag, optionally
// namespaced to a command and config file.
func NewRegionFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "region",
		Usage: "AWS region holding the state resources",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_REGION"),
			cli.EnvVar("AWS_REGION"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewLockTableFlag constructs a cli.StringFlag for the "lock-table" flag,
// optionally namespaced to a command and config file. Empty means native
// lockfile locking; "auto" derives the conventional table name.
func NewLockTableFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "lock-table",
		Usage: "DynamoDB lock table name, or \"auto\" for the conventional name",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TFBOOT_LOCK_TABLE"),
		),
		Value: "",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// stackFlags returns the flag set shared by every command that resolves the
// state-files stack.
func stackFlags(meta meta.Meta, ns string) []cli.Flag {
	return []cli.Flag{
		NewProjectFlag(ns, meta.Config.Source),
		NewOrgFlag(ns, meta.Config.Source),
		NewRepoFlag(ns, meta.Config.Source),
		NewProfileFlag(ns, meta.Config.Source),
		NewRegionFlag(ns, meta.Config.Source),
		NewLockTableFlag(ns, meta.Config.Source),
		workspaceFlag,
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given key exists in cfg.Source.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
