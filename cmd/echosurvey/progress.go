package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"echosurvey/internal/workflow"
)

type progressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// newProgress returns a progress bar reporter when out is a terminal and nil
// otherwise.
func newProgress(out io.Writer) workflow.Progress {
	if !isTerminal(out) {
		return nil
	}
	return &progressReporter{out: out}
}

func (p *progressReporter) Begin(stage string, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(stageLabel(stage)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progressReporter) Step() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progressReporter) Done() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
