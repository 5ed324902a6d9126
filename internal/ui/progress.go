package ui

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *ProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &ProgressManager{p: p}
}

func (pm *ProgressManager) Close() {
	pm.p.Wait()
}

// StoryBar tracks one story extraction, chapter by chapter.
type StoryBar struct {
	bar *mpb.Bar

	total atomic.Int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (pm *ProgressManager) StoryBar(prefix string) *StoryBar {
	b := &StoryBar{start: time.Now()}

	b.bar = pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d chapters", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				if b.final.Load() {
					return fmt.Sprintf(" | %ds", b.elapsed.Load())
				}
				return fmt.Sprintf(" | %ds", int(time.Since(b.start).Seconds()))
			}),
		),
	)

	return b
}

func (b *StoryBar) Update(done, total int) {
	if b.final.Load() {
		return
	}

	if total > 0 {
		b.total.Store(int64(total))
		b.bar.SetTotal(int64(total), false)
	}

	b.bar.SetCurrent(int64(done))
}

func (b *StoryBar) MarkDone() {
	if b.final.Swap(true) {
		return
	}

	b.elapsed.Store(int64(time.Since(b.start).Seconds()))
	b.bar.SetCurrent(b.total.Load())
	b.bar.SetTotal(b.total.Load(), true)
}
