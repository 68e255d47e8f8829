// SPDX-FileCopyrightText: 2026 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package helpers

// RiakcsmonVersion contains the current version of riakcsmon. It is
// overridden at link time with -X.
var RiakcsmonVersion = "dev"
