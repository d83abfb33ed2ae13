// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package cfn renders the CloudFormation template set expressing the state
// backend stack and drives deployments of it. The templates mirror the
// resources package stack converges, so either path produces the same
// backend.
package cfn
