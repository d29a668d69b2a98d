package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/John-Robertt/moviecat/internal/domain"
)

const (
	KindNoYear                 = "no_year"
	KindTitleTooLong           = "title_too_long"
	KindNoLanguageBlock        = "no_language_block"
	KindMalformedLanguageBlock = "malformed_language_block"
	KindNoRating               = "no_rating"
)

// ParseError 表示一行输入无法构造出完整的 Movie。
// 逐行错误，不影响同一文件其它行的加载。
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case KindNoYear:
		msg = "找不到 4 位数字的年份"
	case KindTitleTooLong:
		msg = fmt.Sprintf("标题超过 %d 字节", domain.MaxTitleLen)
	case KindNoLanguageBlock:
		msg = "年份之后找不到语言块 '['"
	case KindMalformedLanguageBlock:
		msg = "语言块缺少 ']'"
	case KindNoRating:
		msg = "语言块之后找不到评分"
	default:
		msg = "无法解析"
	}
	if e.Err != nil {
		return msg + "：" + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind 从 error 中提取 ParseError.Kind；若不是 *ParseError 则返回空串。
func Kind(err error) string {
	var e *ParseError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Parse 把一行原始文本解析为 Movie。
//
// 行的形态（没有固定分隔符，字段按位置推断）：
//
//	<title><year:4 位数字>...[<lang1>; <lang2>; ...]<rating><可选尾随文本>
//
// 规则（兼容历史数据，必须逐条保持）：
// - 年份：从左到右第一个“连续 4 位数字”的位置开始，读取整段连续数字
// - 标题：年份之前的全部字符，去掉末尾空格（只去 ' '，不去 tab 等）
// - 语言块：年份数字之后第一个 '[' 到其后第一个 ']'（不支持嵌套）
// - 评分：']' 之后跳过空格，按“最长数字前缀”解析；尾随文本忽略
//
// 已知怪癖：标题本身含 4 位连续数字时，会被当成年份截断。保持不修。
func Parse(line string, mode domain.RatingMode) (domain.Movie, error) {
	yearAt := findYear(line)
	if yearAt < 0 {
		return domain.Movie{}, &ParseError{Kind: KindNoYear}
	}

	// 长度按原始前缀判断（去尾空格之前）。
	if yearAt > domain.MaxTitleLen {
		return domain.Movie{}, &ParseError{Kind: KindTitleTooLong}
	}
	title := strings.TrimRight(line[:yearAt], " ")

	digitsEnd := yearAt
	for digitsEnd < len(line) && isDigit(line[digitsEnd]) {
		digitsEnd++
	}
	year, err := strconv.Atoi(line[yearAt:digitsEnd])
	if err != nil {
		// 只有超长数字串（溢出）会走到这里。
		return domain.Movie{}, &ParseError{Kind: KindNoYear, Err: err}
	}

	rest := skipSpaces(line[digitsEnd:])
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return domain.Movie{}, &ParseError{Kind: KindNoLanguageBlock}
	}
	closeRel := strings.IndexByte(rest[open+1:], ']')
	if closeRel < 0 {
		return domain.Movie{}, &ParseError{Kind: KindMalformedLanguageBlock}
	}
	block := rest[open+1 : open+1+closeRel]

	rating, ok := parseRating(skipSpaces(rest[open+1+closeRel+1:]), mode)
	if !ok {
		return domain.Movie{}, &ParseError{Kind: KindNoRating}
	}

	return domain.Movie{
		Title:     title,
		Year:      year,
		Languages: splitLanguages(block),
		Rating:    rating,
	}, nil
}

// findYear 返回第一个“连续 4 位数字”的起始下标；不存在返回 -1。
func findYear(s string) int {
	run := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			run = 0
			continue
		}
		run++
		if run == 4 {
			return i - 3
		}
	}
	return -1
}

// splitLanguages 按 ';' 切分并去掉每段首尾空格；空段保留。
func splitLanguages(block string) []string {
	parts := strings.Split(block, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(p, " "))
	}
	return out
}

func skipSpaces(s string) string { return strings.TrimLeft(s, " ") }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
