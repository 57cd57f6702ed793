package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during data ingestion.
type Reporter interface {
	Start(total int, description string)
	Add(n int)
	Describe(message string)
	Finish()
}

// NewReporter returns a TerminalReporter in interactive terminals, or a
// CIReporter when running under CI.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal. A total of -1
// renders a spinner for workloads of unknown size.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, description string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Add(n int) {
	if r.bar != nil {
		_ = r.bar.Add(n)
	}
}

func (r *TerminalReporter) Describe(message string) {
	if r.bar != nil {
		r.bar.Describe(message)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	current int
}

func (r *CIReporter) Start(total int, description string) {
	r.current = 0
	fmt.Fprintf(os.Stderr, "%s\n", description)
}

func (r *CIReporter) Add(n int) {
	r.current += n
}

func (r *CIReporter) Describe(message string) {
	fmt.Fprintf(os.Stderr, "[%d] %s\n", r.current, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(os.Stderr, "done (%d items)\n", r.current)
}

// Discard ignores all progress updates. Used in tests.
type Discard struct{}

func (Discard) Start(int, string) {}

func (Discard) Add(n int) {}

func (Discard) Describe(message string) {}

func (Discard) Finish() {}
