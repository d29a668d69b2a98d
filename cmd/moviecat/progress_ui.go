package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/moviecat/internal/app/check"
	"github.com/John-Robertt/moviecat/internal/config"
	"github.com/John-Robertt/moviecat/internal/domain"
)

var _ check.Observer = (*progressUI)(nil)

// progressUI 是交互终端下 check 的进度输出。
//
// 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time

	ok   int
	fail int
	warn int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] moviecat check\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	if eff.ConfigPath != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigPath)
	}
	fmt.Fprintf(p.w, "  rating_mode: %s\n", eff.RatingMode)
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除隐藏目录\n", formatStringListJSON(eff.ExcludeDirs))
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnScanDone(files int, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "扫描: files=%d (%s)\n", files, formatShortDuration(dur))
}

func (p *progressUI) OnFileDone(idx, total int, res domain.FileReport, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case res.Failed():
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.Path, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case res.Skipped > 0:
		p.warn++
		fmt.Fprintf(p.w, "[%d/%d] %s WARN loaded=%d skipped=%d (%s)\n",
			idx, total, res.Path, res.Loaded, res.Skipped, formatShortDuration(dur),
		)
	default:
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK loaded=%d (%s)\n",
			idx, total, res.Path, res.Loaded, formatShortDuration(dur),
		)
	}

	if idx == total {
		fmt.Fprintf(p.w, "进度: ok=%d warn=%d fail=%d elapsed=%s\n",
			p.ok, p.warn, p.fail, formatElapsed(time.Since(p.startedAt)),
		)
	}
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
