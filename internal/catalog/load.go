package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/John-Robertt/moviecat/internal/domain"
	"github.com/John-Robertt/moviecat/internal/record"
)

// ErrNoHeader 表示输入为空（连表头都读不到）。属于文件级失败。
var ErrNoHeader = errors.New("catalog: 读取表头失败或文件为空")

// maxLineLen 是单行长度上限；bufio.Scanner 默认 64KB，这里放宽到 1MB。
const maxLineLen = 1 << 20

// Options 控制加载阶段的解析行为。
type Options struct {
	RatingMode domain.RatingMode
}

// Stats 是一次加载的计数结果。
type Stats struct {
	Loaded  int
	Skipped int
}

// Load 从 r 逐行读取并构造 Catalog。
//
// - 第一行是表头，无条件丢弃（不校验内容）
// - 之后每行交给 record.Parse；失败的行通过 obs 报告后跳过，继续下一行
// - 只有“读不到表头”或底层读取错误会让整个加载失败
func Load(r io.Reader, opts Options, obs Observer) (*Catalog, Stats, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, Stats{}, fmt.Errorf("读取表头失败：%w", err)
		}
		return nil, Stats{}, ErrNoHeader
	}

	b := newBuilder(opts, obs)
	lineNo := 1
	for sc.Scan() {
		lineNo++
		b.add(lineNo, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("读取第 %d 行失败：%w", lineNo+1, err)
	}
	return b.finish()
}

// LoadLines 与 Load 语义相同，但输入已经按行切好（例如从 HTML 表格转换而来）。
// lines[0] 视为表头。
func LoadLines(lines []string, opts Options, obs Observer) (*Catalog, Stats, error) {
	if len(lines) == 0 {
		return nil, Stats{}, ErrNoHeader
	}
	b := newBuilder(opts, obs)
	for i, line := range lines[1:] {
		b.add(i+2, line)
	}
	return b.finish()
}

type builder struct {
	opts  Options
	obs   Observer
	c     *Catalog
	stats Stats
}

func newBuilder(opts Options, obs Observer) *builder {
	if opts.RatingMode == "" {
		opts.RatingMode = domain.RatingStrict
	}
	return &builder{opts: opts, obs: obs, c: New()}
}

func (b *builder) add(lineNo int, line string) {
	m, err := record.Parse(line, b.opts.RatingMode)
	if err != nil {
		b.stats.Skipped++
		if b.obs != nil {
			b.obs.OnLineSkipped(lineNo, line, err)
		}
		return
	}
	b.c.add(m)
	b.stats.Loaded++
}

func (b *builder) finish() (*Catalog, Stats, error) {
	if b.obs != nil {
		b.obs.OnLoaded(b.stats.Loaded, b.stats.Skipped)
	}
	return b.c, b.stats, nil
}
