// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Every CUE input in runpack (the project descriptor and the user
// configuration file) goes through the same steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema's root definition
//  3. Validate and decode into a Go struct
//
// Errors carry the file name and a JSON-path style location such as
// `dependencies[2].version`.
//
//	//go:embed project_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Project](schema, data, "#Project",
//	    cueutil.WithFilename("runpack.cue"))
package cueutil
