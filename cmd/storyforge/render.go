package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyforge/internal/artifact"
	"storyforge/internal/completeness"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var titleCaser = cases.Title(language.Und)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// audioStatusLabel renders an audio status for table cells, for example
// "File Absent" for file_absent.
func audioStatusLabel(status artifact.AudioStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

func colorizeStatus(label string, status artifact.AudioStatus, colorize bool) string {
	if !colorize {
		return label
	}
	switch status {
	case artifact.AudioComplete:
		return ansiGreen + label + ansiReset
	case artifact.AudioPlaceholder, artifact.AudioIncomplete:
		return ansiYellow + label + ansiReset
	default:
		return ansiRed + label + ansiReset
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes, int(d.Seconds())-minutes*60)
}

func stageCell(report completeness.StageReport) string {
	if report.Valid {
		return fmt.Sprintf("ok (%d)", report.ValidCount)
	}
	return fmt.Sprintf("%d problems", len(report.Problems))
}
