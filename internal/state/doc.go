// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package state decodes Terraform state documents, with optional decryption
// for encrypted OpenTofu state payloads.
package state
