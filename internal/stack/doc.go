// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package stack provisions and inspects the Terraform remote-state stack: the
// versioned S3 state bucket, the GitHub-OIDC IAM role and its inline policy,
// the SSM backend-configuration parameter, and the optional DynamoDB lock
// table. Every converge step is idempotent and every teardown step tolerates
// absence.
package stack
