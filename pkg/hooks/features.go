// Package hooks implements everything that happens after the project
// tree is written: conditional feature pruning, feature unpacking, the
// post-generation hook script and optional git initialization.
package hooks

import (
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

// KeepFeaturesDirOption names the answer that keeps the feature
// container directory in place instead of unpacking it
const KeepFeaturesDirOption = "keep_features_dir"

// PruneSet is the resolved outcome of feature selection: which feature
// directories survive and which are removed. Paths are absolute.
type PruneSet struct {
	// Retained feature directories, in manifest order
	Retained []string

	// Doomed feature directories, in manifest order
	Doomed []string

	// FeatureRoot is the absolute path of the feature container
	FeatureRoot string
}

// ComputePrune decides the fate of every declared feature directory
// from the selected choices. It is pure: nothing is read or deleted.
func ComputePrune(m *manifest.Manifest, answers *types.AnswerSet, outputRoot string) (*PruneSet, error) {
	featureRoot := filepath.Join(outputRoot, paths.FeaturesDir)

	retained := make(map[string]bool)
	for selector, group := range m.Features {
		choice, ok := answers.Get(selector)
		if !ok {
			return nil, errors.Newf(errors.ErrMissingAnswer,
				"feature selector %q has no resolved answer", selector)
		}
		for _, dir := range group[choice] {
			retained[dir] = true
		}
	}

	set := &PruneSet{FeatureRoot: featureRoot}
	for _, dir := range m.FeatureDirs() {
		abs := filepath.Join(featureRoot, dir)
		if retained[dir] {
			set.Retained = append(set.Retained, abs)
		} else {
			set.Doomed = append(set.Doomed, abs)
		}
	}
	return set, nil
}

// Prune removes the doomed feature directories. Already-absent targets
// are fine; real removal failures are collected and reported together
// so a partial prune is visible in one error.
func Prune(set *PruneSet, fsys types.FS) error {
	logger := logging.GetLogger("hooks")

	var failed []string
	var firstErr error
	for _, dir := range set.Doomed {
		logger.Debug().Str("dir", dir).Msg("Pruning feature directory")
		if err := fsys.RemoveAll(dir); err != nil {
			failed = append(failed, dir)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failed) > 0 {
		return errors.Wrapf(firstErr, errors.ErrCleanupFailed,
			"failed to remove %d feature directories", len(failed)).
			WithDetail("paths", failed)
	}
	return nil
}

// Unpack moves the contents of every retained feature directory into
// the project root and removes the feature container. When keep is
// true the retained directories stay under the container instead.
func Unpack(set *PruneSet, outputRoot string, keep bool, fsys types.FS) error {
	logger := logging.GetLogger("hooks")

	if len(set.Retained) == 0 && len(set.Doomed) == 0 {
		return nil
	}

	if keep {
		logger.Debug().Msg("Keeping feature container in place")
		return nil
	}

	for _, dir := range set.Retained {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCleanupFailed,
				"failed to read retained feature directory %s", dir)
		}
		for _, e := range entries {
			src := filepath.Join(dir, e.Name())
			dst := filepath.Join(outputRoot, e.Name())
			if _, err := fsys.Lstat(dst); err == nil {
				return errors.Newf(errors.ErrCleanupFailed,
					"cannot unpack %s: %s already exists in the project root", src, dst)
			}
			if err := fsys.Rename(src, dst); err != nil {
				return errors.Wrapf(err, errors.ErrCleanupFailed,
					"failed to move %s into the project root", src)
			}
			logger.Debug().Str("from", src).Str("to", dst).Msg("Unpacked feature entry")
		}
	}

	if err := fsys.RemoveAll(set.FeatureRoot); err != nil {
		return errors.Wrapf(err, errors.ErrCleanupFailed,
			"failed to remove feature container %s", set.FeatureRoot)
	}
	return nil
}

// KeepContainer reports whether the answers ask for the feature
// container to stay in place
func KeepContainer(answers *types.AnswerSet) bool {
	v, ok := answers.Get(KeepFeaturesDirOption)
	return ok && (v == "true" || v == "yes")
}

// Apply runs the full feature phase: prune unselected directories,
// then unpack the retained ones.
func Apply(m *manifest.Manifest, answers *types.AnswerSet, outputRoot string, fsys types.FS) error {
	if len(m.Features) == 0 {
		return nil
	}

	set, err := ComputePrune(m, answers, outputRoot)
	if err != nil {
		return err
	}
	if err := Prune(set, fsys); err != nil {
		return err
	}
	return Unpack(set, outputRoot, KeepContainer(answers), fsys)
}
