// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backendcfg renders, parses, and compares S3 backend configuration
// HCL. The rendered form is what gets stored in the SSM parameter and what bq
// emits for terraform init -backend-config.
package backendcfg
