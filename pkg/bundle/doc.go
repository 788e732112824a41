// SPDX-License-Identifier: MPL-2.0

// Package bundle writes and reads runtime bundle archives.
//
// A runtime bundle is an xz-compressed tar stream holding exactly these
// entries, in this order:
//
//	dependencies            canonical coordinates, one per line
//	environment.properties  merged environment properties
//	system.properties       merged system properties
//	commandArguments        the command-argument template, verbatim
//	attachments.properties  attachment name to canonical coordinate
//
// Every entry carries the same timestamp, truncated to whole seconds, plus
// fixed ownership and permissions, so equal contents written with equal
// options produce byte-identical archives. Entries use the GNU tar format,
// which never truncates long names.
package bundle
