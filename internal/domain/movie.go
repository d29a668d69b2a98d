package domain

// MaxTitleLen 是标题的长度上限（字节）。历史数据格式的约束，超过即视为无法解析。
const MaxTitleLen = 255

// Movie 是从一行输入中解析出的电影记录。
//
// 不变量：四个字段必须全部解析成功才会构造 Movie；部分成功的行直接丢弃。
type Movie struct {
	Title string
	Year  int
	// Languages 保留原始大小写与顺序；比较时按 ASCII 忽略大小写。
	Languages []string
	Rating    float64
}

// RatingMode 控制评分字段的解析严格程度。
type RatingMode string

const (
	// RatingStrict 要求评分首字符是数字或 '.'（默认）。
	RatingStrict RatingMode = "strict"
	// RatingLenient 额外允许前导符号（+/-）。
	RatingLenient RatingMode = "lenient"
)

// ParseRatingMode 校验配置/CLI 传入的评分模式；空串回退为 strict。
func ParseRatingMode(s string) (RatingMode, bool) {
	switch RatingMode(s) {
	case "":
		return RatingStrict, true
	case RatingStrict, RatingLenient:
		return RatingMode(s), true
	default:
		return "", false
	}
}
