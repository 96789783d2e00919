package main

import (
	"fmt"
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressReporter receives one mark per fingerprinted file.
type progressReporter interface {
	Mark(mark rune)
	Finish()
}

// markProgress prints the raw marks: '.', ':' every tenth file, or the
// fpcalc exit digit for files that are not audio.
type markProgress struct {
	w io.Writer
}

func (p *markProgress) Mark(mark rune) {
	fmt.Fprintf(p.w, "%c", mark)
}

func (p *markProgress) Finish() {
	fmt.Fprintln(p.w)
}

type barProgress struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

func newBarProgress(w io.Writer, total int) *barProgress {
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(64))
	bp := &barProgress{progress: p}
	bp.bar = p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("fingerprinting "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Name(" "),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
	return bp
}

func (p *barProgress) Mark(rune) {
	p.bar.Increment()
}

func (p *barProgress) Finish() {
	if !p.bar.Completed() {
		p.bar.Abort(false)
	}
	p.progress.Wait()
}
