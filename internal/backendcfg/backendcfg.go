// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backendcfg

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config is the attribute set of an S3 backend configuration file, the kind
// passed to terraform init -backend-config=FILE.
type Config struct {
	Bucket        string
	Key           string
	Region        string
	Encrypt       bool
	UseLockfile   bool
	DynamoDBTable string
	RoleARN       string
}

// Provenance is rendered as a comment header on generated configuration so a
// stored parameter can be traced back to its project/workspace pair.
type Provenance struct {
	Project   string
	Workspace string
}

// Render produces the canonical HCL for a backend configuration. Attribute
// order is fixed so rendered output is byte-stable for a given Config.
func Render(cfg Config, prov Provenance) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if prov.Project != "" {
		body.AppendUnstructuredTokens(hclwrite.Tokens{{
			Type: hclsyntax.TokenComment,
			Bytes: []byte(fmt.Sprintf("# tfboot: project=%s workspace=%s\n",
				prov.Project, prov.Workspace)),
		}})
	}

	body.SetAttributeValue("bucket", cty.StringVal(cfg.Bucket))
	body.SetAttributeValue("key", cty.StringVal(cfg.Key))
	body.SetAttributeValue("region", cty.StringVal(cfg.Region))
	body.SetAttributeValue("encrypt", cty.BoolVal(cfg.Encrypt))

	// A configured lock table supersedes the native lockfile.
	if cfg.DynamoDBTable != "" {
		body.SetAttributeValue("dynamodb_table", cty.StringVal(cfg.DynamoDBTable))
	} else {
		body.SetAttributeValue("use_lockfile", cty.BoolVal(cfg.UseLockfile))
	}

	if cfg.RoleARN != "" {
		body.AppendNewline()
		block := body.AppendNewBlock("assume_role", nil)
		block.Body().SetAttributeValue("role_arn", cty.StringVal(cfg.RoleARN))
	}

	return f.Bytes()
}

// Parse reads a backend configuration back into a Config. Only literal
// attribute values are supported, which is all a backend-config file may
// contain anyway.
func Parse(src []byte, filename string) (Config, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parsing %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return Config{}, fmt.Errorf("parsing %s: unexpected body type", filename)
	}

	var cfg Config
	for name, attr := range body.Attributes {
		val, vdiags := attr.Expr.Value(nil)
		if vdiags.HasErrors() {
			return Config{}, fmt.Errorf("evaluating %s in %s: %w", name, filename, vdiags)
		}
		switch name {
		case "bucket":
			cfg.Bucket = val.AsString()
		case "key":
			cfg.Key = val.AsString()
		case "region":
			cfg.Region = val.AsString()
		case "encrypt":
			cfg.Encrypt = val.True()
		case "use_lockfile":
			cfg.UseLockfile = val.True()
		case "dynamodb_table":
			cfg.DynamoDBTable = val.AsString()
		}
	}

	for _, block := range body.Blocks {
		if block.Type != "assume_role" {
			continue
		}
		if attr, ok := block.Body.Attributes["role_arn"]; ok {
			val, vdiags := attr.Expr.Value(nil)
			if vdiags.HasErrors() {
				return Config{}, fmt.Errorf("evaluating role_arn in %s: %w", filename, vdiags)
			}
			cfg.RoleARN = val.AsString()
		}
	}

	return cfg, nil
}

// Diff returns one line per attribute that differs between two configs,
// sorted by attribute name. Empty means the configs match.
func Diff(a, b Config) []string {
	var out []string

	diff := func(name, av, bv string) {
		if av != bv {
			out = append(out, fmt.Sprintf("%s: %q != %q", name, av, bv))
		}
	}

	diff("bucket", a.Bucket, b.Bucket)
	diff("key", a.Key, b.Key)
	diff("region", a.Region, b.Region)
	diff("encrypt", fmt.Sprintf("%t", a.Encrypt), fmt.Sprintf("%t", b.Encrypt))
	diff("use_lockfile", fmt.Sprintf("%t", a.UseLockfile), fmt.Sprintf("%t", b.UseLockfile))
	diff("dynamodb_table", a.DynamoDBTable, b.DynamoDBTable)
	diff("assume_role.role_arn", a.RoleARN, b.RoleARN)

	sort.Strings(out)
	return out
}
