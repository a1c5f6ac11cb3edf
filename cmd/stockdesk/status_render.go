package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"stockdesk/internal/queue"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusKindStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {label: "INFO", color: ansiBlue},
	statusOK:    {label: "OK", color: ansiGreen},
	statusWarn:  {label: "WARN", color: ansiYellow},
	statusError: {label: "ERROR", color: ansiRed},
}

// statusKindForQueue maps a queue state to the severity used when rendering
// its count: failures red, completions green, in-flight stages yellow.
func statusKindForQueue(status queue.Status) statusKind {
	switch status {
	case queue.StatusFailed:
		return statusError
	case queue.StatusCompleted:
		return statusOK
	case queue.StatusPending:
		return statusInfo
	default:
		return statusWarn
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusKindStyles[kind]

	var b strings.Builder
	if colorize && style.color != "" {
		b.WriteString(style.color)
	}
	fmt.Fprintf(&b, "%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", style.label)
	if message != "" {
		b.WriteString(" ")
		b.WriteString(message)
	}
	if colorize && style.color != "" {
		b.WriteString(ansiReset)
	}
	return b.String()
}

// writeSectionHeader prints a titled section divider followed by a rule of
// matching width.
func writeSectionHeader(out io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(out, line)
	fmt.Fprintln(out, rule)
}

// shouldColorize reports whether out is an interactive terminal. NO_COLOR in
// the environment disables color regardless of the terminal.
func shouldColorize(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
