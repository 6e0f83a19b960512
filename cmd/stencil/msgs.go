package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "A stateless project scaffolder"
	MsgNewShort        = "Generate a project from a template"
	MsgShowShort       = "Show a template's options and features"
	MsgListShort       = "List registered templates"
	MsgListLong        = "List displays all templates registered in the stencil data directory."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man page"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat   = "Output format (auto, term, text, json)"
	MsgFlagOutput   = "Directory to create the project under"
	MsgFlagSet      = "Set an option value (name=value, repeatable)"
	MsgFlagAnswers  = "Read option values from a YAML file"
	MsgFlagDefaults = "Accept every default without prompting"
	MsgFlagDryRun   = "Plan the generation without writing anything"
	MsgFlagForce    = "Replace the project root if it already exists"
	MsgFlagNoGit    = "Skip git initialization for this run"

	// Status messages
	MsgNoTemplates = "No templates registered."
)

// Long messages
const (
	MsgRootLong = `stencil generates projects from templates. A template declares its
options in a manifest (stencil.yaml), carries a skeleton directory whose
name contains a placeholder, and may ship optional feature directories
and a post-generation hook script.

Generation is all-or-nothing: stencil plans every file before the first
write, and a failed run leaves no partial project behind.`

	MsgNewLong = `Generate a project from a template.

TEMPLATE is a filesystem path or the name of a registered template.
Options are answered interactively, or supplied with --set, --answers
or --defaults. Values given with --set win over the answers file.`

	MsgShowLong = `Show a template's declared options, derived variables, feature
directories and hook without generating anything.`
)
