package types

// OperationType defines the type of file system operation
type OperationType string

const (
	// OperationCreateDir creates a directory
	OperationCreateDir OperationType = "create_dir"

	// OperationWriteFile writes rendered content to a file
	OperationWriteFile OperationType = "write_file"

	// OperationDeleteTree recursively removes a directory or file
	OperationDeleteTree OperationType = "delete_tree"
)

// OperationStatus defines the state of an operation
type OperationStatus string

const (
	// StatusReady means the operation is ready to be executed
	StatusReady OperationStatus = "ready"
	// StatusSkipped means the operation was skipped
	StatusSkipped OperationStatus = "skipped"
	// StatusError means the operation resulted in an error
	StatusError OperationStatus = "error"
)

// Operation represents a low-level file system operation produced by
// the planner or the pruner. Operations carry fully rendered, absolute
// target paths; no placeholder syntax survives past planning.
type Operation struct {
	// Type is the type of operation
	Type OperationType

	// Target is the absolute target path
	Target string

	// Content is the content to write (for write operations)
	Content []byte

	// Mode is the file permissions (optional)
	Mode *uint32

	// Description is a human-readable description
	Description string

	// Status is the current state of the operation
	Status OperationStatus
}
