package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	stencilerrors "github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/template"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// GenerationSummary is what the new command reports after a run
type GenerationSummary struct {
	Template   string            `json:"template"`
	OutputRoot string            `json:"outputRoot"`
	Answers    map[string]string `json:"answers"`
	Operations int               `json:"operations"`
	HookRan    bool              `json:"hookRan"`
	DryRun     bool              `json:"dryRun"`
}

// RenderSummary writes the post-generation summary in the given format
func RenderSummary(w io.Writer, s *GenerationSummary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)

	case FormatTerminal:
		verb := "Created"
		if s.DryRun {
			verb = "Would create"
		}
		fmt.Fprintf(w, "%s %s %s\n",
			pterm.Success.Prefix.Text,
			headerStyle.Render(verb),
			pathStyle.Render(s.OutputRoot))
		for _, line := range answerLines(s.Answers) {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render(line))
		}
		if s.HookRan {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render("post-generation hook: ok"))
		}
		return nil

	default:
		verb := "created"
		if s.DryRun {
			verb = "would create"
		}
		fmt.Fprintf(w, "%s: %s %s\n", s.Template, verb, s.OutputRoot)
		for _, line := range answerLines(s.Answers) {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return nil
	}
}

func answerLines(answers map[string]string) []string {
	names := make([]string, 0, len(answers))
	for name := range answers {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s = %s", name, answers[name]))
	}
	return lines
}

// RenderError formats an error for the terminal, surfacing the error
// code when the error carries one
func RenderError(err error, format Format) string {
	code := stencilerrors.GetErrorCode(err)

	if format == FormatTerminal {
		if code != stencilerrors.ErrUnknown {
			return fmt.Sprintf("%s %s %v",
				pterm.Error.Prefix.Text,
				pterm.Error.MessageStyle.Sprint(code),
				err)
		}
		return fmt.Sprintf("%s %v", pterm.Error.Prefix.Text, err)
	}

	return fmt.Sprintf("Error: %v", err)
}

// TemplateOverview renders a template's manifest as markdown for the
// show command
func TemplateOverview(tpl *template.Template) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", tpl.Name)
	fmt.Fprintf(&b, "Template root: `%s`\n\n", tpl.Root)

	b.WriteString("## Options\n\n")
	b.WriteString("| Option | Kind | Default | Choices |\n")
	b.WriteString("|--------|------|---------|----------|\n")
	for _, opt := range tpl.Manifest.Options {
		choices := ""
		if opt.Kind == manifest.KindChoice {
			choices = strings.Join(opt.Choices, ", ")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", opt.Name, opt.Kind, opt.Default, choices)
	}

	if len(tpl.Manifest.Derived) > 0 {
		b.WriteString("\n## Derived\n\n")
		for _, d := range tpl.Manifest.Derived {
			fmt.Fprintf(&b, "- `%s` = `%s`\n", d.Name, d.Expr)
		}
	}

	if len(tpl.Manifest.Features) > 0 {
		b.WriteString("\n## Features\n\n")
		for _, opt := range tpl.Manifest.Options {
			group, ok := tpl.Manifest.Features[opt.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "Selector `%s`:\n\n", opt.Name)
			for _, choice := range opt.Choices {
				dirs := group[choice]
				if len(dirs) == 0 {
					fmt.Fprintf(&b, "- `%s`: no feature directories\n", choice)
					continue
				}
				fmt.Fprintf(&b, "- `%s`: %s\n", choice, strings.Join(dirs, ", "))
			}
			b.WriteString("\n")
		}
	}

	if tpl.Manifest.Hook != "" {
		fmt.Fprintf(&b, "\n## Hook\n\nPost-generation hook: `%s`\n", tpl.Manifest.Hook)
	}
	if tpl.Manifest.MinVersion != "" {
		fmt.Fprintf(&b, "\nRequires stencil %s or newer.\n", tpl.Manifest.MinVersion)
	}

	return b.String()
}

// RenderMarkdown renders markdown for the terminal via glamour, or
// passes it through unstyled for plain output
func RenderMarkdown(content string, format Format) (string, error) {
	if format != FormatTerminal {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content, nil
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}
	return out, nil
}
