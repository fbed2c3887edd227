// Package output renders selection trees, file lists and export summaries for
// the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/temirov/aiprompt/internal/export"
	"github.com/temirov/aiprompt/internal/selection"
)

const (
	// FormatRaw renders human-readable text.
	FormatRaw = "raw"
	// FormatJSON renders indented JSON.
	FormatJSON = "json"

	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	selectedMarker  = "[x] "
	inheritedMarker = "[+] "
	clearedMarker   = "[ ] "
	directorySuffix = "/"

	noColorEnvironmentVariable = "NO_COLOR"
	errorUnsupportedFormat     = "unsupported format %q"
)

// Palette colors markers and names. A zero Palette renders plain text.
type Palette struct {
	enabled   bool
	selected  *color.Color
	inherited *color.Color
	directory *color.Color
	warning   *color.Color
}

// NewPalette returns a Palette that colors output when enabled is true.
func NewPalette(enabled bool) Palette {
	palette := Palette{
		enabled:   enabled,
		selected:  color.New(color.FgGreen),
		inherited: color.New(color.FgCyan),
		directory: color.New(color.Bold, color.FgBlue),
		warning:   color.New(color.FgYellow),
	}
	for _, colored := range []*color.Color{palette.selected, palette.inherited, palette.directory, palette.warning} {
		if enabled {
			colored.EnableColor()
		} else {
			colored.DisableColor()
		}
	}
	return palette
}

// ShouldColorize reports whether output written to file should be colored.
func ShouldColorize(file *os.File) bool {
	if file == nil || os.Getenv(noColorEnvironmentVariable) != "" {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func (palette Palette) paint(colored *color.Color, text string) string {
	if !palette.enabled || colored == nil {
		return text
	}
	return colored.Sprint(text)
}

// ValidateFormat rejects formats other than FormatRaw and FormatJSON.
func ValidateFormat(format string) error {
	if format != FormatRaw && format != FormatJSON {
		return fmt.Errorf(errorUnsupportedFormat, format)
	}
	return nil
}

// RenderJSON marshals value as indented JSON.
func RenderJSON(value any) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// WriteTreeRaw renders the snapshot with one line per node. Each line carries
// a marker: [x] for a node whose own flag is set, [+] for a node included
// through a selected ancestor and [ ] otherwise.
func WriteTreeRaw(writer io.Writer, root selection.SnapshotNode, palette Palette) {
	fmt.Fprintf(writer, "%s%s\n", palette.marker(root.Selected, false), palette.paint(palette.directory, root.Name))
	renderChildren(writer, root, "", root.Selected, palette)
}

func renderChildren(writer io.Writer, node selection.SnapshotNode, prefix string, inherited bool, palette Palette) {
	for index, child := range node.Children {
		isLast := index == len(node.Children)-1
		linePrefix, childPrefix := treeNodeLinePrefix(prefix, isLast)
		name := child.Name
		if child.Kind == selection.NodeKindDirectory {
			name = palette.paint(palette.directory, name+directorySuffix)
		}
		fmt.Fprintf(writer, "%s%s%s\n", linePrefix, palette.marker(child.Selected, inherited), name)
		if child.Kind == selection.NodeKindDirectory {
			renderChildren(writer, child, childPrefix, inherited || child.Selected, palette)
		}
	}
}

func treeNodeLinePrefix(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}

func (palette Palette) marker(selected bool, inherited bool) string {
	switch {
	case selected:
		return palette.paint(palette.selected, selectedMarker)
	case inherited:
		return palette.paint(palette.inherited, inheritedMarker)
	default:
		return clearedMarker
	}
}

// WriteFileList writes one path per line.
func WriteFileList(writer io.Writer, paths []string) {
	for _, filePath := range paths {
		fmt.Fprintln(writer, filePath)
	}
}

// WriteWarnings writes each warning on its own line prefixed with "Warning: ".
func WriteWarnings(writer io.Writer, warnings []string, palette Palette) {
	for _, warning := range warnings {
		fmt.Fprintln(writer, palette.paint(palette.warning, "Warning: "+warning))
	}
}

// FormatSummaryLine formats an export summary into a single line.
func FormatSummaryLine(summary export.Summary) string {
	label := "files"
	if summary.Files == 1 {
		label = "file"
	}
	extra := ""
	if summary.Tokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.Tokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.Files, label, summary.TotalSize, extra, modelSuffix)
}
