// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* file helpers, it builds fixture packaging bundles
// (WriteBundle, ZipDir) and supplies a controllable FakeClock.
package testutil
