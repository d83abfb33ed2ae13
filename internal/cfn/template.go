// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cfn

import (
	"gopkg.in/yaml.v2"
)

const formatVersion = "2010-09-09"

// Template models the slice of CloudFormation syntax the renderer emits.
// Maps marshal with sorted keys, which keeps renders deterministic.
type Template struct {
	AWSTemplateFormatVersion string                    `yaml:"AWSTemplateFormatVersion"`
	Description              string                    `yaml:"Description"`
	Parameters               map[string]Parameter      `yaml:"Parameters,omitempty"`
	Resources                map[string]Resource       `yaml:"Resources"`
	Outputs                  map[string]TemplateOutput `yaml:"Outputs,omitempty"`
}

// Parameter is one template input.
type Parameter struct {
	Type          string   `yaml:"Type"`
	Description   string   `yaml:"Description,omitempty"`
	Default       string   `yaml:"Default,omitempty"`
	AllowedValues []string `yaml:"AllowedValues,omitempty"`
}

// Resource is one declared resource.
type Resource struct {
	Type           string         `yaml:"Type"`
	DeletionPolicy string         `yaml:"DeletionPolicy,omitempty"`
	Properties     map[string]any `yaml:"Properties,omitempty"`
}

// TemplateOutput is one declared stack output.
type TemplateOutput struct {
	Description string `yaml:"Description,omitempty"`
	Value       any    `yaml:"Value"`
}

// Ref builds the Ref intrinsic.
func Ref(logical string) map[string]any {
	return map[string]any{"Ref": logical}
}

// Sub builds the Fn::Sub intrinsic.
func Sub(tpl string) map[string]any {
	return map[string]any{"Fn::Sub": tpl}
}

// GetAtt builds the Fn::GetAtt intrinsic.
func GetAtt(logical, attr string) map[string]any {
	return map[string]any{"Fn::GetAtt": []string{logical, attr}}
}

// Render marshals the template as YAML behind a generated-file header.
func (t Template) Render() ([]byte, error) {
	body, err := yaml.Marshal(t)
	if err != nil {
		return nil, err
	}
	header := "# Generated by tfboot cq. Regenerate instead of editing.\n"
	return append([]byte(header), body...), nil
}
