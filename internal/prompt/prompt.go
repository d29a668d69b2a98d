// Package prompt 把交互式输入（菜单选项、年份、语言）解析为明确的值或 InvalidInputError。
// 与报表本身解耦：报表可以在不模拟终端输入的情况下测试。
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Choice 是菜单选项。
type Choice int

const (
	ChoiceByYear Choice = iota + 1
	ChoiceBestPerYear
	ChoiceByLanguage
	ChoiceExit
)

// InvalidInputError 表示用户输入无法解析，调用方应提示并重新询问。
type InvalidInputError struct {
	Field string // "choice" | "year" | "language"
	Input string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("无效的 %s 输入：%q", e.Field, e.Input)
}

// IsInvalidInput 判断 err 是否为 *InvalidInputError。
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

// ParseChoice 解析菜单选项（1-4）。
func ParseChoice(raw string) (Choice, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < int(ChoiceByYear) || n > int(ChoiceExit) {
		return 0, &InvalidInputError{Field: "choice", Input: trimNewline(raw)}
	}
	return Choice(n), nil
}

// ParseYear 解析年份。只要求是十进制整数，不限制位数（不存在的年份由报表返回“没有数据”）。
func ParseYear(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InvalidInputError{Field: "year", Input: trimNewline(raw)}
	}
	return n, nil
}

// ParseLanguage 去掉行尾换行后返回原始检索词（大小写与内部空白保持原样，用于回显）。
// 只有空白的输入视为无效。
func ParseLanguage(raw string) (string, error) {
	term := trimNewline(raw)
	if strings.TrimSpace(term) == "" {
		return "", &InvalidInputError{Field: "language", Input: term}
	}
	return term, nil
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\r\n")
}
