package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sportanalyzer/internal/session"
)

// progressView renders session snapshots to a terminal stream and signals
// done once the attempt reaches a terminal stage.
type progressView struct {
	out   io.Writer
	quiet bool

	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	stage session.Stage
	done  chan struct{}
	once  sync.Once
}

func newProgressView(out io.Writer, quiet bool) *progressView {
	return &progressView{out: out, quiet: quiet, done: make(chan struct{})}
}

func (p *progressView) observe(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := snap.Stage != p.stage
	p.stage = snap.Stage
	switch snap.Stage {
	case session.Uploading:
		if p.quiet {
			break
		}
		if p.bar == nil {
			p.bar = progressbar.NewOptions(100,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription(stageLabel(snap.Stage)),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionSetRenderBlankState(true),
			)
		}
		_ = p.bar.Set(snap.UploadPercent)
	case session.Processing:
		if changed {
			p.finishBar()
			p.printf("Processing video...\n")
		}
	case session.Complete, session.Error:
		if changed {
			p.finishBar()
			p.printf("%s in %s\n", stageLabel(snap.Stage), snap.Elapsed().Round(time.Second))
		}
		p.once.Do(func() { close(p.done) })
	}
}

func (p *progressView) finishBar() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.printf("\n")
}

func (p *progressView) printf(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, format, args...)
}

// stageLabel renders a stage for humans, e.g. "File Selected".
func stageLabel(stage session.Stage) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(stage.String(), "_", " "))
}
