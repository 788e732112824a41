// SPDX-License-Identifier: MPL-2.0

// Package packager assembles a runtime bundle for one module.
//
// Package visits contribution origins in a fixed order: the module's own
// packaging sources, then attachments declared in the project descriptor, then
// every packaging bundle dependency in coordinate order. Packaging bundles are
// removed from the shipped dependency list once their contributions are read.
// Only direct dependencies are inspected; a packaging bundle carried inside
// another packaging bundle is never opened.
//
// Origins are read one at a time and each bundle handle is closed before the
// next origin is visited. Package does not coordinate concurrent runs that
// target the same output path.
package packager
