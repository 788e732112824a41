// SPDX-License-Identifier: MPL-2.0

// Package coordinate models resolved dependency coordinates and their canonical
// string form.
//
// A coordinate renders as:
//
//	group:artifact:type:version
//	group:artifact:type:classifier:version
//
// The classifier segment is omitted when empty. Coordinates have a total order
// over (group, artifact, type, classifier, version) using literal string
// comparison; it drives both deduplication and the order in which artifacts are
// visited and serialized.
package coordinate
