// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveStateKey(t *testing.T) {
	// Bare names are workloads and expand through the key template.
	assert.Equal(t, "api/terraform.tfstate", resolveStateKey("api"))
	assert.Equal(t, "networking/terraform.tfstate", resolveStateKey("networking"))

	// Anything with a slash is already a full object key.
	assert.Equal(t, "api/terraform.tfstate", resolveStateKey("api/terraform.tfstate"))
	assert.Equal(t, "env:/prod/api/terraform.tfstate", resolveStateKey("env:/prod/api/terraform.tfstate"))
}
