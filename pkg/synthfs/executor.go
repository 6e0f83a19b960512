// Package synthfs executes planned operations through the synthfs
// pipeline. The pipeline validates every operation before the first
// write, which keeps generation all-or-nothing at the filesystem layer.
package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// Executor runs planned operations against the real filesystem
type Executor struct {
	logger     zerolog.Logger
	dryRun     bool
	filesystem synthfs.FileSystem

	// root confines every operation target. Targets outside it are
	// rejected before anything runs.
	root string
}

// NewExecutor creates an executor confined to the given output root
func NewExecutor(root string, dryRun bool) *Executor {
	return &Executor{
		logger:     logging.GetLogger("synthfs"),
		dryRun:     dryRun,
		filesystem: filesystem.NewOSFileSystem("/"),
		root:       root,
	}
}

// Execute runs the operations in order. In dry-run mode it only logs
// what would happen.
func (e *Executor) Execute(ctx context.Context, ops []types.Operation) error {
	if e.dryRun {
		e.logger.Info().Msg("Dry run mode - operations would be executed:")
		for _, op := range ops {
			if op.Status == types.StatusReady {
				e.logOperation(op)
			}
		}
		return nil
	}

	synthOps := make([]synthfs.Operation, 0, len(ops))
	for _, op := range ops {
		if op.Status != types.StatusReady {
			e.logger.Debug().
				Str("type", string(op.Type)).
				Str("target", op.Target).
				Str("status", string(op.Status)).
				Msg("Skipping operation with non-ready status")
			continue
		}

		synthOp, err := e.convert(op)
		if err != nil {
			return errors.Wrapf(err, errors.ErrGenerateWrite,
				"failed to convert operation: %s", op.Description)
		}
		synthOps = append(synthOps, synthOp)
	}

	if len(synthOps) == 0 {
		e.logger.Info().Msg("No operations to execute")
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range synthOps {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrGenerateWrite,
				"failed to add operation to pipeline")
		}
	}

	executor := synthfs.NewExecutor()
	e.logger.Info().Int("operationCount", len(synthOps)).Msg("Executing operations")

	result := executor.Run(ctx, pipeline, e.filesystem)
	if result.GetError() != nil {
		e.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return errors.Wrap(result.GetError(), errors.ErrGenerateWrite,
			"failed to execute operations")
	}

	e.logger.Info().Msg("All operations executed successfully")
	return nil
}

// convert translates one planned operation into a synthfs operation
func (e *Executor) convert(op types.Operation) (synthfs.Operation, error) {
	if op.Target == "" {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"%s operation requires a target", op.Type)
	}
	if err := e.validateTarget(op.Target); err != nil {
		return nil, err
	}

	relPath, err := filepath.Rel("/", op.Target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to convert path: %s", op.Target)
	}

	switch op.Type {
	case types.OperationCreateDir:
		mode := os.FileMode(0755)
		if op.Mode != nil {
			mode = os.FileMode(*op.Mode)
		}
		opID := core.OperationID(fmt.Sprintf("create-dir-%s", op.Target))
		createOp := operations.NewCreateDirectoryOperation(opID, relPath)
		createOp.SetItem(&directoryItem{path: relPath, mode: mode})
		return synthfs.NewOperationsPackageAdapter(createOp), nil

	case types.OperationWriteFile:
		mode := os.FileMode(0644)
		if op.Mode != nil {
			mode = os.FileMode(*op.Mode)
		}
		opID := core.OperationID(fmt.Sprintf("write-file-%s", op.Target))
		createOp := operations.NewCreateFileOperation(opID, relPath)
		createOp.SetItem(&fileItem{path: relPath, content: op.Content, mode: mode})
		return synthfs.NewOperationsPackageAdapter(createOp), nil

	case types.OperationDeleteTree:
		opID := core.OperationID(fmt.Sprintf("delete-%s", op.Target))
		deleteOp := operations.NewDeleteOperation(opID, relPath)
		return synthfs.NewOperationsPackageAdapter(deleteOp), nil

	default:
		return nil, errors.Newf(errors.ErrInternal,
			"unsupported operation type: %s", op.Type)
	}
}

// validateTarget confines operations to the executor's root
func (e *Executor) validateTarget(target string) error {
	normalized, err := filepath.Abs(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to normalize path: %s", target)
	}
	if !paths.IsPathWithin(normalized, e.root) && normalized != filepath.Clean(e.root) {
		return errors.Newf(errors.ErrPermission,
			"operation target is outside the output directory: %s", target)
	}
	return nil
}

// logOperation logs what a dry run would do
func (e *Executor) logOperation(op types.Operation) {
	logger := e.logger.With().
		Str("type", string(op.Type)).
		Str("description", op.Description).
		Logger()

	switch op.Type {
	case types.OperationCreateDir:
		logger.Info().
			Str("target", op.Target).
			Msg("Would create directory")
	case types.OperationWriteFile:
		logger.Info().
			Str("target", op.Target).
			Int("contentLen", len(op.Content)).
			Msg("Would write file")
	case types.OperationDeleteTree:
		logger.Info().
			Str("target", op.Target).
			Msg("Would delete")
	default:
		logger.Info().Msg("Would execute operation")
	}
}

// Item types for synthfs operations

// fileItem implements the interface needed for file operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

// directoryItem implements the interface needed for directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
