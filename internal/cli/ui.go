package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treewalk/pkg/diagram"
)

// stdout receives all status output; tests swap it.
var stdout io.Writer = os.Stdout

var (
	colorAccent  = lipgloss.Color("36")  // teal
	colorOK      = lipgloss.Color("35")  // green
	colorWarn    = lipgloss.Color("220") // amber
	colorError   = lipgloss.Color("167") // soft red
	colorLink    = lipgloss.Color("75")  // light blue
	colorValue   = lipgloss.Color("255") // white
	colorMuted   = lipgloss.Color("245") // gray
	colorDim     = lipgloss.Color("240")
	colorActive  = lipgloss.Color("160") // same red as the active fill
	colorVisited = lipgloss.Color("250")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorValue)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorOK)
	styleIconError   = lipgloss.NewStyle().Foreground(colorError)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorWarn)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorMuted)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// stateStyle colours a node id the way the animation paints it.
func stateStyle(s diagram.State) lipgloss.Style {
	switch s {
	case diagram.StateActive:
		return lipgloss.NewStyle().Bold(true).Foreground(colorActive)
	case diagram.StateVisited:
		return lipgloss.NewStyle().Foreground(colorVisited)
	default:
		return StyleValue
	}
}

func printLine(prefix, msg string) {
	fmt.Fprintln(stdout, prefix+" "+msg)
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning), StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// printStep prints one animation step with the node in its painted colour.
func printStep(step int, node string, state diagram.State) {
	fmt.Fprintf(stdout, "  %s %s\n", StyleDim.Render(fmt.Sprintf("step %d", step)), stateStyle(state).Render(node))
}

func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}
