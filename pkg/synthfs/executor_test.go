package synthfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, true)

	target := filepath.Join(root, "project")
	err := e.Execute(context.Background(), []types.Operation{
		{Type: types.OperationCreateDir, Target: target, Status: types.StatusReady},
		{Type: types.OperationWriteFile, Target: filepath.Join(target, "f.txt"),
			Content: []byte("x"), Status: types.StatusReady},
	})
	require.NoError(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecute_SkipsNonReadyOperations(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, false)

	err := e.Execute(context.Background(), []types.Operation{
		{Type: types.OperationCreateDir, Target: filepath.Join(root, "skipped"),
			Status: types.StatusSkipped},
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(root, "skipped"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvert_RejectsTargetOutsideRoot(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, false)

	_, err := e.convert(types.Operation{
		Type:   types.OperationWriteFile,
		Target: filepath.Join(filepath.Dir(root), "elsewhere", "f.txt"),
		Status: types.StatusReady,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
}

func TestConvert_RejectsEmptyTarget(t *testing.T) {
	e := NewExecutor(t.TempDir(), false)

	_, err := e.convert(types.Operation{Type: types.OperationCreateDir})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestConvert_RejectsUnknownType(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, false)

	_, err := e.convert(types.Operation{
		Type:   types.OperationType("chmod"),
		Target: filepath.Join(root, "f"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestExecute_WritesPlannedTree(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, false)

	project := filepath.Join(root, "acme")
	err := e.Execute(context.Background(), []types.Operation{
		{Type: types.OperationCreateDir, Target: project, Status: types.StatusReady,
			Description: "create directory acme"},
		{Type: types.OperationWriteFile, Target: filepath.Join(project, "README.md"),
			Content: []byte("# acme\n"), Status: types.StatusReady,
			Description: "write file acme/README.md"},
	})
	require.NoError(t, err)

	data, readErr := os.ReadFile(filepath.Join(project, "README.md"))
	require.NoError(t, readErr)
	assert.Equal(t, "# acme\n", string(data))
}
