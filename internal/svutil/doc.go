// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package svutil offers state version discovery and reading helpers. Given a
// list of state versions, it can find specific versions based on user criteria.
// Versions resolved from a file path spec are read locally; everything else
// comes out of the state bucket.
package svutil
