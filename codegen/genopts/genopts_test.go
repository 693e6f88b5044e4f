// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genopts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/loopgen-org/loopgen/codegen/generr"
	"github.com/loopgen-org/loopgen/codegen/genopts"
)

func TestDefault(t *testing.T) {
	opts := genopts.Default()
	require.NoError(t, opts.Validate())
	assert.Equal(t, genopts.Map, opts.Mode)
	assert.Equal(t, genopts.RowMajor, opts.Order)
	assert.Equal(t, "i", opts.LoopIndex)
	assert.Equal(t, "j", opts.BatchIndex)
	assert.False(t, opts.PermissiveFinalize)
}

func TestLoad(t *testing.T) {
	doc := `
mode: mask
order: F
use_private_memory: true
permissive_finalize: true
`
	opts, err := genopts.Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, genopts.Mask, opts.Mode)
	assert.Equal(t, genopts.ColumnMajor, opts.Order)
	assert.True(t, opts.UsePrivateMemory)
	assert.True(t, opts.PermissiveFinalize)
	// Defaults survive a partial document.
	assert.Equal(t, "i", opts.LoopIndex)
}

func TestLoadInvalid(t *testing.T) {
	_, err := genopts.Load(strings.NewReader("mode: polyhedral"))
	require.Error(t, err)
	assert.ErrorIs(t, err, generr.ErrConfiguration)
}

func TestValidateCollectsAll(t *testing.T) {
	opts := &genopts.Options{Mode: "x", Order: "y", LoopIndex: "i", BatchIndex: "i"}
	err := opts.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}
