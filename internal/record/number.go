package record

import (
	"strconv"

	"github.com/John-Robertt/moviecat/internal/domain"
)

// parseRating 以“尽量多读”的方式解析 s 开头的十进制浮点数，后续字符一律忽略。
//
// 接受的前缀：[sign] digits [ '.' digits ] [ ('e'|'E') [sign] digits ]
// - strict：不接受 sign，首字符必须是数字或 '.'
// - lenient：允许前导 '+'/'-'
// 尾数部分至少要有一位数字，否则视为没有评分。
func parseRating(s string, mode domain.RatingMode) (float64, bool) {
	n := numericPrefix(s, mode == domain.RatingLenient)
	if n == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// numericPrefix 返回 s 中合法浮点数前缀的长度；没有合法前缀返回 0。
func numericPrefix(s string, allowSign bool) int {
	i := 0
	if allowSign && i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		// "7." 这种形态也算合法（与 atof 一致）；单独的 "." 不算。
		if mantissa+frac > 0 {
			i = j
			mantissa += frac
		}
	}
	if mantissa == 0 {
		return 0
	}

	// 指数部分不完整时（例如 "7e" / "7e+"），只取尾数。
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}
