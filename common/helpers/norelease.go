// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package helpers

import "testing"

// Testing reports whether the current code is being run in a test.
func Testing() bool {
	return testing.Testing()
}
