// Package layers builds the synthetic per-layer content trees and the
// layer tar archives of the test image fixture.
//
// Each layer is identified by its 1-based ordinal n and always contains
// the same two payloads:
//
//	test_file_<n>.txt         "This is test file from layer <n>\n"
//	subdir_<n>/subfile.txt    "This is a subfile from layer <n>\n"
//
// Content is fully deterministic given n; nothing time- or
// machine-dependent is embedded in the payload bytes, so fixtures are
// byte-identical across runs. BuildContent materializes the tree in a
// staging directory and WriteArchive packages it into a single tar whose
// entry names carry no staging-path prefix.
package layers
