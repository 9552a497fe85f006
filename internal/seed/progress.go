package seed

import (
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// Progress is advanced once per finished job.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFactory creates the tracker for one city.
type ProgressFactory func(max int, description string) Progress

// SilentProgress tracks progress without drawing anything.
func SilentProgress(max int, description string) Progress {
	return progressbar.DefaultSilent(int64(max), description)
}

// TerminalProgress draws bars on w, or on an ANSI-aware stdout when w is nil.
func TerminalProgress(w io.Writer) ProgressFactory {
	if w == nil {
		w = ansi.NewAnsiStdout()
	}
	return func(max int, description string) Progress {
		return progressbar.NewOptions(max,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("treasures"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetDescription(description),
			progressbar.OptionOnCompletion(func() {
				_, _ = io.WriteString(w, "\n")
			}),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
}
