// Package export assembles the portable prompt document from the selection
// state: the project structure, the content of selected files, diagnostics and
// free-text metadata preserved across re-exports.
package export

// Default metadata written when neither a prior document nor configuration supplies a value.
const (
	DefaultProjectContext = "<User written description of his project, targets and the technology he is using>"
	DefaultPrompt         = "<User written specific task the AI should be working on>"
)

// DefaultPromptRules are written once and preserved by later exports.
var DefaultPromptRules = []string{
	"Answer with the complete content of every file you change.",
	"Keep the existing code style and naming.",
	"Explain changes that touch files not listed under files.",
}

// Document is the exported prompt document.
type Document struct {
	ProjectContext string            `json:"project-context"`
	Prompt         string            `json:"prompt"`
	PromptRules    []string          `json:"prompt-rules"`
	Structure      Structure         `json:"structure"`
	Files          map[string]string `json:"files"`
	Errors         []ErrorEntry      `json:"errors"`
}

// ErrorEntry is a single diagnostic attached to a file.
type ErrorEntry struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	ErrorMessage string `json:"errorMessage"`
}

// Defaults supplies the metadata used when the prior document lacks it.
type Defaults struct {
	ProjectContext string
	Prompt         string
	PromptRules    []string
}

// StandardDefaults returns the built-in metadata defaults.
func StandardDefaults() Defaults {
	return Defaults{
		ProjectContext: DefaultProjectContext,
		Prompt:         DefaultPrompt,
		PromptRules:    append([]string{}, DefaultPromptRules...),
	}
}
