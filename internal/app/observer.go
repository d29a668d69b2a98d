package app

import (
	"log/slog"
	"sync"

	"github.com/John-Robertt/moviecat/internal/domain"
	"github.com/John-Robertt/moviecat/internal/record"
)

// LogObserver 把加载事件写成结构化日志：每个被跳过的行一条 warn，结束时一条 info 汇总。
type LogObserver struct {
	Log  *slog.Logger
	Path string
}

func (o LogObserver) OnLineSkipped(lineNo int, raw string, err error) {
	if o.Log == nil {
		return
	}
	o.Log.Warn("跳过无法解析的行",
		slog.String("path", o.Path),
		slog.Int("line", lineNo),
		slog.String("kind", record.Kind(err)),
		slog.String("text", raw),
		slog.Any("err", err),
	)
}

func (o LogObserver) OnLoaded(loaded, skipped int) {
	if o.Log == nil {
		return
	}
	o.Log.Info("加载完成",
		slog.String("path", o.Path),
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped),
	)
}

// ReportObserver 把加载事件收集为 domain.FileReport（供 check 报告使用）。并发安全。
type ReportObserver struct {
	mu  sync.Mutex
	rep domain.FileReport
}

// NewReportObserver 创建收集器；path/format 原样写入报告。
func NewReportObserver(path, format string) *ReportObserver {
	return &ReportObserver{rep: domain.FileReport{Path: path, Format: format, Lines: []domain.SkippedLine{}}}
}

func (o *ReportObserver) OnLineSkipped(lineNo int, raw string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	o.rep.Lines = append(o.rep.Lines, domain.SkippedLine{
		Line: lineNo,
		Kind: record.Kind(err),
		Msg:  msg,
		Text: raw,
	})
}

func (o *ReportObserver) OnLoaded(loaded, skipped int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rep.Loaded = loaded
	o.rep.Skipped = skipped
}

// Fail 记录文件级失败。
func (o *ReportObserver) Fail(code, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rep.ErrorCode = code
	o.rep.ErrorMsg = msg
}

// Report 返回当前收集结果的副本。
func (o *ReportObserver) Report() domain.FileReport {
	o.mu.Lock()
	defer o.mu.Unlock()
	r := o.rep
	r.Lines = append([]domain.SkippedLine(nil), o.rep.Lines...)
	return r
}
