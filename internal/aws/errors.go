// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrorContext carries input context for improving API error messages.
type ErrorContext struct {
	Profile   string
	Region    string
	Operation string // e.g., "head bucket", "put parameter"
	Resource  string // e.g., "bucket", "role", "parameter"
	Name      string // name of the resource the operation targeted
}

// FriendlyAWS wraps an AWS API error with a contextual, user-friendly message
// while preserving the original error for further inspection via errors.Is/As.
func FriendlyAWS(err error, ctx ErrorContext) error {
	if err == nil {
		return nil
	}

	profile := nonEmpty(ctx.Profile, "<default>")
	operation := nonEmpty(ctx.Operation, "request")

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return fmt.Errorf("%s: access denied for profile %q (403): %w",
				operation, profile, err)

		case "ExpiredToken", "ExpiredTokenException", "RequestExpired":
			return fmt.Errorf("%s: session for profile %q has expired, re-authenticate and retry: %w",
				operation, profile, err)

		case "InvalidClientTokenId", "UnrecognizedClientException", "SignatureDoesNotMatch":
			return fmt.Errorf("%s: credentials for profile %q were rejected (401): %w",
				operation, profile, err)
		}

		if IsNotFound(err) && ctx.Resource != "" {
			return fmt.Errorf("%s: %s %q not found in region %s (404)",
				operation, ctx.Resource, ctx.Name, nonEmpty(ctx.Region, "<unknown>"))
		}
	}

	// Unknown error: provide generic context and wrap
	return fmt.Errorf("%s for %s %q (profile=%q region=%q): %w",
		operation, nonEmpty(ctx.Resource, "resource"), ctx.Name,
		ctx.Profile, ctx.Region, err)
}

// IsNotFound reports whether err is one of the not-found shapes the AWS APIs
// return for the resource kinds tfboot manages.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket", "NoSuchKey",
		"NoSuchEntity", "NoSuchEntityException",
		"ParameterNotFound", "ResourceNotFoundException",
		"NoSuchLifecycleConfiguration",
		"NoSuchPublicAccessBlockConfiguration",
		"ServerSideEncryptionConfigurationNotFoundError":
		return true
	}
	return false
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
