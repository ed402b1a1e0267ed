package layers

import (
	"fmt"
	"time"
)

// archiveEpoch is the fixed mod-time stamped on every tar entry so that
// layer archives do not vary between runs. It matches the first history
// timestamp of the generated config.
var archiveEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SubfileName is the name of the file inside each layer's subdirectory.
const SubfileName = "subfile.txt"

// FlatFileName returns the name of the flat test file for layer n.
func FlatFileName(n int) string {
	return fmt.Sprintf("test_file_%d.txt", n)
}

// SubdirName returns the name of the subdirectory for layer n.
func SubdirName(n int) string {
	return fmt.Sprintf("subdir_%d", n)
}

// FlatFileContent returns the deterministic payload of the flat test file.
func FlatFileContent(n int) string {
	return fmt.Sprintf("This is test file from layer %d\n", n)
}

// SubfileContent returns the deterministic payload of the subdirectory file.
func SubfileContent(n int) string {
	return fmt.Sprintf("This is a subfile from layer %d\n", n)
}

// LayerError represents errors that occur during layer operations
type LayerError struct {
	Operation string
	Layer     string
	Cause     error
}

func (e *LayerError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("layer %s operation %s failed: %v", e.Layer, e.Operation, e.Cause)
	}
	return fmt.Sprintf("layer operation %s failed: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *LayerError) Unwrap() error {
	return e.Cause
}

// NewLayerError creates a new LayerError
func NewLayerError(operation, layer string, cause error) *LayerError {
	return &LayerError{
		Operation: operation,
		Layer:     layer,
		Cause:     cause,
	}
}
