// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes and renders differences between versions of state or
// other comparable datasets.
package differ
