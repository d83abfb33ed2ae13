// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tfboot/tfboot/internal/log"
)

// Workspaces is the fixed set of workspaces state resources may live in. The
// CloudFormation Environment parameter mirrors it as AllowedValues.
var Workspaces = []string{"dev", "staging", "prod"}

// projectNameRe is the one shape rule applied to project names. It keeps every
// derived identifier (bucket, role, parameter path) within AWS naming rules.
var projectNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]{1,40}[a-z0-9]$`)

// Settings is the resolved input surface of a bootstrap run. Zero values are
// filled by ApplyDefaults; Validate enforces the shape rules.
type Settings struct {
	ProjectName             string `validate:"required,projectname"`
	Organization            string `validate:"required"`
	RepositoryURL           string `validate:"required,startswith=https://github.com/"`
	ImportExistingResources bool
	Workspace               string `validate:"required,oneof=dev staging prod"`
	Region                  string
	Profile                 string
	LockTable               string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on an empty tag name.
	_ = v.RegisterValidation("projectname", func(fl validator.FieldLevel) bool {
		return projectNameRe.MatchString(fl.Field().String())
	})
	return v
}

// ApplyDefaults fills every empty field with its default. Organization
// defaults to the project name and the repository URL is derived from both.
func (s *Settings) ApplyDefaults() {
	if s.ProjectName == "" {
		s.ProjectName = "terraform-core"
	}
	if s.Organization == "" {
		s.Organization = s.ProjectName
	}
	if s.RepositoryURL == "" {
		s.RepositoryURL = "https://github.com/" + s.Organization + "/" + s.ProjectName
	}
	if s.Workspace == "" || s.Workspace == "default" {
		if s.Workspace == "default" {
			log.Warnf("workspace \"default\" has no state resources; using \"dev\"")
		}
		s.Workspace = "dev"
	}
}

// Validate checks the settings against their tags and returns a readable
// error listing every violation.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// IsWorkspace reports membership in the fixed workspace set.
func IsWorkspace(name string) bool {
	for _, w := range Workspaces {
		if w == name {
			return true
		}
	}
	return false
}

// DetectWorkspace resolves the current Terraform workspace the way the CLI
// does: TF_WORKSPACE wins, then the .terraform/environment marker under
// rootDir, then "default".
func DetectWorkspace(rootDir string) string {
	if ws := os.Getenv("TF_WORKSPACE"); ws != "" {
		return ws
	}
	marker := filepath.Join(rootDir, ".terraform", "environment")
	if b, err := os.ReadFile(marker); err == nil {
		if ws := strings.TrimSpace(string(b)); ws != "" {
			return ws
		}
	}
	return "default"
}

// formatValidationError flattens validator errors into one readable message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %s", field, e.Param())
	case "projectname":
		return fmt.Sprintf("%s must be lowercase alphanumeric/hyphens, 3-42 chars, starting with a letter", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
