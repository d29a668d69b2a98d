package catalog

import (
	"iter"
	"slices"
	"strings"
)

// YearReport 是“某年上映的电影”报表结果。
type YearReport struct {
	Year   int
	Titles []string
}

// Found 为 false 时调用方应提示“该年份没有数据”。
func (r YearReport) Found() bool { return len(r.Titles) > 0 }

// YearBest 是某一年评分最高的电影。
type YearBest struct {
	Year   int
	Rating float64
	Title  string
}

// LanguageMatch 是语言报表的一行。
type LanguageMatch struct {
	Year  int
	Title string
}

// LanguageReport 是“某语言的电影”报表结果。Term 保留调用方传入的原始检索词（用于展示）。
type LanguageReport struct {
	Term    string
	Matches []LanguageMatch
}

func (r LanguageReport) Found() bool { return len(r.Matches) > 0 }

// TitlesInYear 按 Catalog 顺序惰性产出 year 年上映的标题。
func (c *Catalog) TitlesInYear(year int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if c == nil {
			return
		}
		for _, m := range c.movies {
			if m.Year != year {
				continue
			}
			if !yield(m.Title) {
				return
			}
		}
	}
}

// ByYear 收集 TitlesInYear 的结果。
func (c *Catalog) ByYear(year int) YearReport {
	return YearReport{Year: year, Titles: slices.Collect(c.TitlesInYear(year))}
}

// HighestRatedPerYear 返回每个年份评分最高的电影。
//
// - 同分时取 Catalog 中最早出现的那条（只有严格更高才替换）
// - 输出顺序是年份首次出现的顺序，不按数值排序
func (c *Catalog) HighestRatedPerYear() []YearBest {
	if c == nil {
		return nil
	}
	index := make(map[int]int, 64)
	out := make([]YearBest, 0, 64)
	for _, m := range c.movies {
		if i, ok := index[m.Year]; ok {
			if m.Rating > out[i].Rating {
				out[i].Rating = m.Rating
				out[i].Title = m.Title
			}
			continue
		}
		index[m.Year] = len(out)
		out = append(out, YearBest{Year: m.Year, Rating: m.Rating, Title: m.Title})
	}
	return out
}

// ByLanguage 找出语言列表中含有 term 的电影（按 ASCII 忽略大小写、整词匹配，不做子串匹配）。
// term 会先去掉首尾空白；每部电影最多出现一次。
func (c *Catalog) ByLanguage(term string) LanguageReport {
	r := LanguageReport{Term: term}
	if c == nil {
		return r
	}
	want := lowerASCII(strings.TrimSpace(term))
	for _, m := range c.movies {
		for _, lang := range m.Languages {
			if lowerASCII(lang) == want {
				r.Matches = append(r.Matches, LanguageMatch{Year: m.Year, Title: m.Title})
				break
			}
		}
	}
	return r
}

// lowerASCII 按字节只折叠 A-Z；其它字节（包括非法 UTF-8）原样保留。
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
