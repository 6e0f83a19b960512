// Package manifest loads and validates the template manifest.
//
// The manifest (stencil.yaml at the template root) declares the
// user-facing options of a template: each top-level key is an option
// identifier, a scalar value is a free-text default, and a sequence is
// an ordered list of permitted choices whose first element is the
// default. Keys prefixed with an underscore are directives to stencil
// itself, not user-facing options. Declaration order is preserved and
// drives prompt order.
package manifest

import (
	"path"
	"regexp"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
	"gopkg.in/yaml.v3"
)

// Directive keys understood by stencil
const (
	DirectiveFeatures   = "_features"
	DirectiveDerived    = "_derived"
	DirectiveHook       = "_hook"
	DirectiveMinVersion = "_min_version"
)

// Kind distinguishes free-text options from enumerated ones
type Kind string

const (
	// KindText is a free-text option with a default value
	KindText Kind = "text"
	// KindChoice is an enumerated option; the first choice is the default
	KindChoice Kind = "choice"
)

// Option is a single user-facing option declared by the manifest
type Option struct {
	// Name is the unique option identifier
	Name string

	// Kind is text or choice
	Kind Kind

	// Default is the default value. For choice options this is always
	// the first declared choice.
	Default string

	// Choices holds the permitted values for choice options, in
	// declaration order. Nil for text options.
	Choices []string
}

// IsValidChoice reports whether value is permitted for this option.
// Text options accept any string.
func (o *Option) IsValidChoice(value string) bool {
	if o.Kind != KindChoice {
		return true
	}
	for _, c := range o.Choices {
		if c == value {
			return true
		}
	}
	return false
}

// Derived is a manifest-declared variable computed from base answers
// after collection. Derived variables are never prompted.
type Derived struct {
	Name string
	Expr string
}

// FeatureGroup maps each choice of a selector option to the feature
// directories retained when that choice is selected. Choices absent
// from the group retain nothing.
type FeatureGroup map[string][]string

// Manifest is the validated, immutable option declaration of a template
type Manifest struct {
	// Options in declaration order
	Options []Option

	// Derived variables in declaration order
	Derived []Derived

	// Features maps selector option names to their feature groups
	Features map[string]FeatureGroup

	// Hook is the template-relative path of the post-generation hook
	// script, empty when the template declares none.
	Hook string

	// MinVersion is the minimum stencil version the template asks for
	MinVersion string

	byName map[string]*Option
}

// Option returns the declared option with the given name
func (m *Manifest) Option(name string) (*Option, bool) {
	o, ok := m.byName[name]
	return o, ok
}

// FeatureDirs returns every feature directory mentioned by any feature
// group, deduplicated, in stable order.
func (m *Manifest) FeatureDirs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, opt := range m.Options {
		group, ok := m.Features[opt.Name]
		if !ok {
			continue
		}
		for _, choice := range opt.Choices {
			for _, dir := range group[choice] {
				if !seen[dir] {
					seen[dir] = true
					out = append(out, dir)
				}
			}
		}
	}
	return out
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads and parses the manifest at the given path
func Load(manifestPath string, fsys types.FS) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := fsys.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound,
			"failed to read manifest %s", manifestPath)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", manifestPath).
		Int("options", len(m.Options)).
		Int("derived", len(m.Derived)).
		Msg("Manifest loaded")

	return m, nil
}

// Parse parses and validates manifest bytes
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestMalformed, "manifest is not valid YAML")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New(errors.ErrManifestMalformed, "manifest is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrManifestMalformed, "manifest is not a mapping")
	}

	m := &Manifest{
		Features: make(map[string]FeatureGroup),
		byName:   make(map[string]*Option),
	}

	seen := make(map[string]bool)
	for i := 0; i < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, errors.Newf(errors.ErrManifestMalformed,
				"manifest key at line %d is not a scalar", keyNode.Line)
		}
		key := keyNode.Value

		if seen[key] {
			return nil, errors.Newf(errors.ErrManifestMalformed,
				"duplicate manifest key %q", key)
		}
		seen[key] = true

		if strings.HasPrefix(key, "_") {
			if err := m.parseDirective(key, valueNode); err != nil {
				return nil, err
			}
			continue
		}

		opt, err := parseOption(key, valueNode)
		if err != nil {
			return nil, err
		}
		m.Options = append(m.Options, *opt)
		m.byName[key] = &m.Options[len(m.Options)-1]
	}

	// byName points into Options; rebuild after the slice stopped growing
	m.byName = make(map[string]*Option, len(m.Options))
	for i := range m.Options {
		m.byName[m.Options[i].Name] = &m.Options[i]
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// parseOption parses one user-facing option declaration
func parseOption(name string, node *yaml.Node) (*Option, error) {
	if !identifierRe.MatchString(name) {
		return nil, errors.Newf(errors.ErrManifestMalformed,
			"option name %q is not a valid identifier", name)
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return &Option{Name: name, Kind: KindText, Default: node.Value}, nil

	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return nil, errors.Newf(errors.ErrManifestMalformed,
				"option %q declares an empty choice list", name)
		}
		choices := make([]string, 0, len(node.Content))
		dup := make(map[string]bool)
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errors.Newf(errors.ErrManifestMalformed,
					"option %q has a non-scalar choice at line %d", name, item.Line)
			}
			if dup[item.Value] {
				return nil, errors.Newf(errors.ErrManifestMalformed,
					"option %q declares duplicate choice %q", name, item.Value)
			}
			dup[item.Value] = true
			choices = append(choices, item.Value)
		}
		return &Option{Name: name, Kind: KindChoice, Default: choices[0], Choices: choices}, nil

	default:
		return nil, errors.Newf(errors.ErrManifestMalformed,
			"option %q must be a scalar default or a choice list", name)
	}
}

// parseDirective parses one underscore-prefixed directive
func (m *Manifest) parseDirective(key string, node *yaml.Node) error {
	switch key {
	case DirectiveHook:
		if node.Kind != yaml.ScalarNode {
			return errors.New(errors.ErrManifestMalformed, "_hook must be a scalar path")
		}
		m.Hook = node.Value
		return nil

	case DirectiveMinVersion:
		if node.Kind != yaml.ScalarNode {
			return errors.New(errors.ErrManifestMalformed, "_min_version must be a scalar")
		}
		m.MinVersion = node.Value
		return nil

	case DirectiveDerived:
		if node.Kind != yaml.MappingNode {
			return errors.New(errors.ErrManifestMalformed, "_derived must be a mapping")
		}
		for i := 0; i < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return errors.New(errors.ErrManifestMalformed,
					"_derived entries must map names to scalar expressions")
			}
			if !identifierRe.MatchString(k.Value) {
				return errors.Newf(errors.ErrManifestMalformed,
					"derived name %q is not a valid identifier", k.Value)
			}
			m.Derived = append(m.Derived, Derived{Name: k.Value, Expr: v.Value})
		}
		return nil

	case DirectiveFeatures:
		if node.Kind != yaml.MappingNode {
			return errors.New(errors.ErrManifestMalformed, "_features must be a mapping")
		}
		for i := 0; i < len(node.Content); i += 2 {
			selNode, groupNode := node.Content[i], node.Content[i+1]
			if selNode.Kind != yaml.ScalarNode || groupNode.Kind != yaml.MappingNode {
				return errors.New(errors.ErrManifestMalformed,
					"_features must map selector options to choice mappings")
			}
			group := make(FeatureGroup)
			for j := 0; j < len(groupNode.Content); j += 2 {
				choiceNode, dirsNode := groupNode.Content[j], groupNode.Content[j+1]
				if choiceNode.Kind != yaml.ScalarNode || dirsNode.Kind != yaml.SequenceNode {
					return errors.New(errors.ErrManifestMalformed,
						"_features choices must map to directory lists")
				}
				var dirs []string
				for _, d := range dirsNode.Content {
					if d.Kind != yaml.ScalarNode {
						return errors.New(errors.ErrManifestMalformed,
							"_features directory entries must be scalars")
					}
					dirs = append(dirs, d.Value)
				}
				group[choiceNode.Value] = dirs
			}
			m.Features[selNode.Value] = group
		}
		return nil

	default:
		return errors.Newf(errors.ErrManifestMalformed, "unknown directive %q", key)
	}
}

// validate enforces the cross-cutting manifest invariants
func (m *Manifest) validate() error {
	// Derived names must not collide with options or each other
	derivedSeen := make(map[string]bool)
	for _, d := range m.Derived {
		if _, exists := m.byName[d.Name]; exists {
			return errors.Newf(errors.ErrManifestMalformed,
				"derived variable %q collides with a declared option", d.Name)
		}
		if derivedSeen[d.Name] {
			return errors.Newf(errors.ErrManifestMalformed,
				"duplicate derived variable %q", d.Name)
		}
		derivedSeen[d.Name] = true
	}

	// Feature groups must reference declared enumerated options and
	// known choices, with safe relative directories
	for selector, group := range m.Features {
		opt, ok := m.byName[selector]
		if !ok {
			return errors.Newf(errors.ErrManifestMalformed,
				"_features references undeclared option %q", selector)
		}
		if opt.Kind != KindChoice {
			return errors.Newf(errors.ErrManifestMalformed,
				"_features selector %q is not an enumerated option", selector)
		}
		for choice, dirs := range group {
			if !opt.IsValidChoice(choice) {
				return errors.Newf(errors.ErrManifestMalformed,
					"_features maps unknown choice %q for option %q", choice, selector)
			}
			for _, dir := range dirs {
				if dir == "" || path.IsAbs(dir) || dir != path.Clean(dir) ||
					dir == ".." || strings.HasPrefix(dir, "../") || strings.Contains(dir, "/") {
					return errors.Newf(errors.ErrManifestMalformed,
						"feature directory %q for %s=%s must be a bare directory name", dir, selector, choice)
				}
			}
		}
	}

	// Hook path must stay inside the template
	if m.Hook != "" {
		if path.IsAbs(m.Hook) || m.Hook != path.Clean(m.Hook) || strings.HasPrefix(m.Hook, "../") {
			return errors.Newf(errors.ErrManifestMalformed,
				"_hook path %q must be template-relative", m.Hook)
		}
	}

	return nil
}
