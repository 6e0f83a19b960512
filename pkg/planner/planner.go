// Package planner turns a loaded template plus a resolved answer set
// into an ordered list of filesystem operations. Planning is pure: it
// touches no filesystem and either produces a complete plan or fails
// before anything is written.
package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/engine"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/template"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Plan is the complete set of operations for one generation run
type Plan struct {
	// OutputRoot is the absolute path of the generated project root,
	// the rendered skeleton directory placed under the output dir.
	OutputRoot string

	// Operations in execution order, parents before children
	Operations []types.Operation
}

// Build renders every skeleton path and file against the answers and
// produces the write plan rooted at outputDir.
func Build(tpl *template.Template, answers *types.AnswerSet, outputDir string, files config.Files) (*Plan, error) {
	logger := logging.GetLogger("planner")

	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve output directory %s", outputDir)
	}

	plan := &Plan{}
	rendered := make(map[string]string) // rendered target -> source rel path

	for _, node := range tpl.Nodes {
		target, err := renderNodePath(node.RelPath, answers)
		if err != nil {
			return nil, err
		}

		if prev, clash := rendered[target]; clash {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"template entries %q and %q both render to %q", prev, node.RelPath, target)
		}
		rendered[target] = node.RelPath

		absTarget := filepath.Join(absOut, filepath.FromSlash(target))

		if node.IsDir {
			mode := files.DirMode
			plan.Operations = append(plan.Operations, types.Operation{
				Type:        types.OperationCreateDir,
				Target:      absTarget,
				Mode:        &mode,
				Description: fmt.Sprintf("create directory %s", target),
				Status:      types.StatusReady,
			})
			if plan.OutputRoot == "" {
				plan.OutputRoot = absTarget
			}
			continue
		}

		content := node.Content
		if !node.Verbatim {
			out, err := engine.Render(string(node.Content), answers)
			if err != nil {
				var serr *errors.StencilError
				if e, ok := err.(*errors.StencilError); ok {
					serr = e
				} else {
					serr = errors.Wrap(err, errors.ErrUnresolvedPlaceholder, "substitution failed")
				}
				return nil, serr.WithDetail("file", node.RelPath)
			}
			content = []byte(out)
		}

		mode := files.FileMode
		if node.Executable {
			mode = files.ExecutableMode
		}
		plan.Operations = append(plan.Operations, types.Operation{
			Type:        types.OperationWriteFile,
			Target:      absTarget,
			Content:     content,
			Mode:        &mode,
			Description: fmt.Sprintf("write file %s", target),
			Status:      types.StatusReady,
		})
	}

	if plan.OutputRoot == "" {
		return nil, errors.New(errors.ErrTemplateInvalid, "template skeleton is empty")
	}

	logger.Debug().
		Str("outputRoot", plan.OutputRoot).
		Int("operations", len(plan.Operations)).
		Msg("Plan built")

	return plan, nil
}

// renderNodePath renders each path segment independently so a value
// cannot smuggle separators across segment boundaries
func renderNodePath(relPath string, answers *types.AnswerSet) (string, error) {
	segments := strings.Split(relPath, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		renderedSeg, err := engine.RenderPath(seg, answers)
		if err != nil {
			var serr *errors.StencilError
			if e, ok := err.(*errors.StencilError); ok {
				serr = e
			} else {
				serr = errors.Wrap(err, errors.ErrUnresolvedPlaceholder, "path substitution failed")
			}
			return "", serr.WithDetail("path", relPath)
		}
		if renderedSeg == "" {
			return "", errors.Newf(errors.ErrInvalidInput,
				"path segment %q of %q renders to an empty name", seg, relPath)
		}
		if renderedSeg == "." || renderedSeg == ".." {
			return "", errors.Newf(errors.ErrInvalidInput,
				"path segment %q of %q renders to %q", seg, relPath, renderedSeg)
		}
		out = append(out, renderedSeg)
	}
	return strings.Join(out, "/"), nil
}
