package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/goliatone/go-formkit/pkg/upload"
)

// UploadProgress redraws one progress bar line per file as bytes stream.
type UploadProgress struct {
	mu   sync.Mutex
	out  io.Writer
	bar  progress.Model
	last map[string]int
}

// NewUploadProgress returns a progress printer with a bar of the given width.
func NewUploadProgress(out io.Writer, width int) *UploadProgress {
	if width < 10 {
		width = 40
	}
	return &UploadProgress{
		out:  out,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
		last: make(map[string]int),
	}
}

// Update prints the bar for p when its whole percentage changed. It matches
// the upload.WithOnProgress callback.
func (u *UploadProgress) Update(p upload.Progress) {
	u.mu.Lock()
	defer u.mu.Unlock()

	percent := Percent(p.Sent, p.Total)
	whole := int(percent * 100)
	if prev, ok := u.last[p.File]; ok && prev == whole {
		return
	}
	u.last[p.File] = whole
	fmt.Fprintf(u.out, "\r%s %s", u.bar.ViewAs(percent), p.File)
	if whole >= 100 {
		fmt.Fprintln(u.out)
	}
}

// Percent clamps sent/total into [0, 1]. An unknown total reports zero.
func Percent(sent, total int64) float64 {
	if total <= 0 || sent <= 0 {
		return 0
	}
	if sent >= total {
		return 1
	}
	return float64(sent) / float64(total)
}
