// Package ui renders the human facing console output of the CLI: the
// banner, configuration lines, status messages and run summaries. All
// output goes to stderr so stdout stays free for reports.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/waftester/schemafuzz/pkg/defaults"
)

// Build information, overridable via ldflags:
// go build -ldflags "-X github.com/waftester/schemafuzz/pkg/ui.Commit=abc123"
var (
	Version   = defaults.Version
	BuildDate = "unknown"
	Commit    = "dev"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	out         io.Writer = os.Stderr
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses everything but
// errors)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// SetOutput redirects console output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	uiMu.Lock()
	defer uiMu.Unlock()
	prev := out
	out = w
	return prev
}

func output() io.Writer {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return out
}

func emit(s string) {
	fmt.Fprintln(output(), SanitizeString(s))
}

const bannerArt = `
           _                          __
  ___ ____/ /  ___ __ _  ___ _  ___ _/ _|_ _ ________
 (_-</ __/ _ \/ -_)  ' \/ _ '/ / _ '/ _/ // /_ /_ /
/___/\__/_//_/\__/_/_/_/\_,_/  \_,_/_/ \_,_//__/__/
`

// PrintBanner prints the application banner with version info.
func PrintBanner() {
	if IsSilent() {
		return
	}
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			emit(BannerStyle.Render(line))
		}
	}
	emit(strings.Repeat(" ", 34) + VersionStyle.Render("v"+Version))
	emit("")
}

// PrintDivider prints a horizontal rule sized to the terminal.
func PrintDivider() {
	if IsSilent() {
		return
	}
	width := min(TerminalWidth(75), 75)
	emit(DividerStyle.Render(strings.Repeat("-", width)))
}

// PrintSection prints a section header
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	emit("")
	emit(SectionStyle.Render("> " + title))
	PrintDivider()
}

// ConfigLine is one key/value shown under the banner.
type ConfigLine struct {
	Key   string
	Value string
}

// PrintConfig prints configuration lines in order, aligned on the
// longest key. Empty values are left out.
func PrintConfig(lines ...ConfigLine) {
	if IsSilent() {
		return
	}
	width := 0
	for _, l := range lines {
		width = max(width, len(l.Key))
	}
	for _, l := range lines {
		if l.Value == "" {
			continue
		}
		emit(fmt.Sprintf(" :: %s : %s",
			ConfigLabelStyle.Width(width).Render(l.Key),
			ConfigValueStyle.Render(l.Value)))
	}
}

// BracketPart is a piece of bracketed output
type BracketPart struct {
	Text  string
	Style lipgloss.Style
}

// CategoryBracket colors a fuzzing category.
func CategoryBracket(category string) BracketPart {
	return BracketPart{Text: category, Style: CategoryStyle(category)}
}

// TargetBracket colors a request target.
func TargetBracket(target string) BracketPart {
	return BracketPart{Text: target, Style: TargetStyle(target)}
}

// MutedBracket dims text.
func MutedBracket(text string) BracketPart {
	return BracketPart{Text: text, Style: lipgloss.NewStyle().Foreground(Muted)}
}

// PrintBracketedInfo prints bracketed parts followed by a message.
// Example: [requestBody] [maxLength] tag: value not found
func PrintBracketedInfo(message string, parts ...BracketPart) {
	if IsSilent() {
		return
	}
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(BracketStyle.Render("["))
		b.WriteString(part.Style.Render(part.Text))
		b.WriteString(BracketStyle.Render("] "))
	}
	b.WriteString(message)
	emit(b.String())
}

// PrintHelp prints contextual help
func PrintHelp(text string) {
	if IsSilent() {
		return
	}
	emit(HelpStyle.Render("  [i] " + text))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if IsSilent() {
		return
	}
	emit(SuccessStyle.Render("  [+] " + message))
}

// PrintError prints an error message. Errors ignore silent mode.
func PrintError(message string) {
	emit(ErrorStyle.Render("  [X] " + message))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	emit(WarningStyle.Render("  [!] " + message))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	emit(fmt.Sprintf("  %s %s", InfoStyle.Render("*"), message))
}
