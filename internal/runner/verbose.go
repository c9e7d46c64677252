package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const verbosePrefix = "[verbose]"

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGray   = "\x1b[90m"
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type verboseStyle int

const (
	styleDefault verboseStyle = iota
	styleHeading
	styleCorrect
	styleIncorrect
	styleWarning
)

// verboseLog writes styled progress lines when enabled.
type verboseLog struct {
	enabled bool
	writer  io.Writer
	palette verbosePalette
}

func newVerboseLog(enabled bool, writer io.Writer, noColor bool) verboseLog {
	if !enabled || writer == nil {
		return verboseLog{}
	}
	return verboseLog{enabled: true, writer: writer, palette: paletteFor(writer, noColor)}
}

func (v verboseLog) printf(style verboseStyle, format string, args ...any) {
	if !v.enabled {
		return
	}
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(v.writer, "%s %s\n", v.palette.prefix(verbosePrefix), v.palette.apply(style, line))
}

func styleForEvent(eventType QuestionEventType) verboseStyle {
	switch eventType {
	case QuestionCorrect:
		return styleCorrect
	case QuestionIncorrect:
		return styleIncorrect
	case QuestionFailed, QuestionUnknown:
		return styleWarning
	default:
		return styleDefault
	}
}

type verbosePalette struct {
	enabled bool
}

func paletteFor(writer io.Writer, noColor bool) verbosePalette {
	if noColor {
		return verbosePalette{enabled: false}
	}
	return verbosePalette{enabled: shouldUseStyling(writer)}
}

func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

func (p verbosePalette) prefix(text string) string {
	if !p.enabled {
		return text
	}
	return ansiDim + ansiGray + text + ansiReset
}

func (p verbosePalette) apply(style verboseStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleHeading:
		return ansiBold + ansiBlue + text + ansiReset
	case styleCorrect:
		return ansiBold + ansiGreen + text + ansiReset
	case styleIncorrect:
		return ansiBold + ansiRed + text + ansiReset
	case styleWarning:
		return ansiYellow + text + ansiReset
	default:
		return text
	}
}
