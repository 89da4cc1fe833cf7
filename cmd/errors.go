// SPDX-License-Identifier: Apache-2.0

package cmd

import "errors"

var errStateNotInitialized = errors.New("pgdiff state is not initialized, run 'pgdiff status --init' to initialize")
