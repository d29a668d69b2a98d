package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	FormatText = "text"
	FormatHTML = "html"
)

const (
	ErrCodeOpenFailed        = "open_failed"
	ErrCodeNoHeader          = "no_header"
	ErrCodeBinaryInput       = "binary_input"
	ErrCodeReadFailed        = "read_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// CheckReport 是 check 命令对外稳定输出（stdout JSON / moviecat-report.json）的结构。
type CheckReport struct {
	RunID string `json:"run_id"`
	Path  string `json:"path"`

	RatingMode RatingMode `json:"rating_mode"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary CheckSummary `json:"summary"`
	Files   []FileReport `json:"files"`
}

type CheckSummary struct {
	Files   int `json:"files"`
	Failed  int `json:"failed"`
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// FileReport 描述单个目录文件的加载结果。
// ErrorCode 非空表示整个文件加载失败（打不开、没有表头、二进制内容等）。
type FileReport struct {
	Path   string `json:"path"`
	Format string `json:"format"`

	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Lines []SkippedLine `json:"skipped_lines"`
}

// SkippedLine 是一条无法解析的输入行。Line 从 1 开始计数（表头是第 1 行）。
type SkippedLine struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
	Text string `json:"text"`
}

// Failed 表示文件级失败（区别于逐行解析失败）。
func (f FileReport) Failed() bool { return f.ErrorCode != "" }

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) files 按 path 稳定排序；文件内 skipped_lines 按行号排序
// 3) summary 由 files 计算得出
func (r *CheckReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })

	s := CheckSummary{Files: len(r.Files)}
	for i := range r.Files {
		f := &r.Files[i]
		if f.Lines == nil {
			f.Lines = []SkippedLine{}
		}
		sort.SliceStable(f.Lines, func(a, b int) bool { return f.Lines[a].Line < f.Lines[b].Line })
		if f.Failed() {
			s.Failed++
		}
		s.Loaded += f.Loaded
		s.Skipped += f.Skipped
	}
	r.Summary = s
}

// Clean 表示所有文件都加载成功且没有跳过任何行。
func (r CheckReport) Clean() bool {
	return r.Summary.Failed == 0 && r.Summary.Skipped == 0
}

func (r CheckReport) MarshalJSON() ([]byte, error) {
	type Alias CheckReport
	a := Alias(r)
	if a.Files == nil {
		a.Files = []FileReport{}
	}
	return json.Marshal(a)
}
