// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError records what operation failed, on which resource, and what
// the user can do about it. The issue catalog holds Markdown help for each class
// of packaging failure; ForError picks the entry that explains an error.
package issue
