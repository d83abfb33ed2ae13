// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package importer discovers pre-existing state backend resources by their
// naming prefix and imports them into the local Terraform state through the
// terraform (or tofu) CLI.
package importer
