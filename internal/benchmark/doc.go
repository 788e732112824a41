// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the packaging hot paths:
//   - project descriptor parsing and schema validation
//   - attachment document and properties parsing
//   - merging origin contributions
//   - tar.xz assembly and a complete packaging run
//
// To generate a PGO profile, run:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
