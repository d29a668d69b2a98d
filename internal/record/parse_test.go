package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/John-Robertt/moviecat/internal/domain"
)

func TestParse_DocumentedShape(t *testing.T) {
	got, err := Parse("The Incredible Hulk 2008 [English; Portuguese;Spanish ] 6.8 Value", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := domain.Movie{
		Title:     "The Incredible Hulk",
		Year:      2008,
		Languages: []string{"English", "Portuguese", "Spanish"},
		Rating:    6.8,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %+v，实际 %+v", want, got)
	}
}

func TestParse_TitleWithPunctuation(t *testing.T) {
	got, err := Parse("Crouching Tiger, Hidden Dragon! 2000[Mandarin]7.9", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Title != "Crouching Tiger, Hidden Dragon!" || got.Year != 2000 || got.Rating != 7.9 {
		t.Fatalf("解析结果不符合预期：%+v", got)
	}
}

func TestParse_TitleKeepsTabs(t *testing.T) {
	got, err := Parse("Tabbed\t 1999 [English] 5", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 只去掉末尾 ' '，tab 之后的空格去掉后 tab 保留。
	if got.Title != "Tabbed\t" {
		t.Fatalf("期望标题保留 tab，实际 %q", got.Title)
	}
}

func TestParse_EmptyTitleAllowed(t *testing.T) {
	got, err := Parse("1999 [English] 5.5", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Title != "" || got.Year != 1999 {
		t.Fatalf("解析结果不符合预期：%+v", got)
	}
}

func TestParse_YearReadsWholeDigitRun(t *testing.T) {
	got, err := Parse("Long Year 199912 [English] 1.0", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Year != 199912 {
		t.Fatalf("期望 year=199912，实际 %d", got.Year)
	}
}

func TestParse_TitleWithFourDigitsQuirk(t *testing.T) {
	// 历史行为：标题中的 "2001" 会被当成年份。
	got, err := Parse("2001 A Space Odyssey 1968 [English] 8.3", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Title != "" || got.Year != 2001 {
		t.Fatalf("期望沿用第一段 4 位数字作为年份，实际 %+v", got)
	}
	// 语言块从第一个 '[' 开始，评分仍然能读到。
	if !reflect.DeepEqual(got.Languages, []string{"English"}) || got.Rating != 8.3 {
		t.Fatalf("解析结果不符合预期：%+v", got)
	}

	got, err = Parse("Blade Runner 2049 2017 [English] 8.0", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Title != "Blade Runner" || got.Year != 2049 {
		t.Fatalf("期望 title=Blade Runner year=2049，实际 %+v", got)
	}
}

func TestParse_EmptyLanguageTokensKept(t *testing.T) {
	got, err := Parse("X 1999 [English;; French ;] 7", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"English", "", "French", ""}
	if !reflect.DeepEqual(got.Languages, want) {
		t.Fatalf("期望 %q，实际 %q", want, got.Languages)
	}

	got, err = Parse("Y 1999 [] 7", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(got.Languages, []string{""}) {
		t.Fatalf("期望单个空 token，实际 %q", got.Languages)
	}
}

func TestParse_NestedBracketsNotSupported(t *testing.T) {
	got, err := Parse("X 1999 [English [UK]] 7", domain.RatingStrict)
	// 第一个 ']' 结束语言块，剩余 "] 7" 没有可用的评分。
	if Kind(err) != KindNoRating {
		t.Fatalf("期望 %q，实际 err=%v got=%+v", KindNoRating, err, got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind string
	}{
		{"empty", "", KindNoYear},
		{"three digits", "Movie 199 [English] 7.0", KindNoYear},
		{"split digits", "Movie 19 99 [English] 7.0", KindNoYear},
		{"title too long", strings.Repeat("a", domain.MaxTitleLen+1) + "1999 [English] 7.0", KindTitleTooLong},
		{"no bracket", "Movie 1999 English 7.0", KindNoLanguageBlock},
		{"no closing bracket", "Movie 1999 [English 7.0", KindMalformedLanguageBlock},
		{"no rating", "Movie 1999 [English]", KindNoRating},
		{"word rating", "Movie 1999 [English] Value", KindNoRating},
		{"lone dot", "Movie 1999 [English] . 7", KindNoRating},
		{"signed in strict", "Movie 1999 [English] -1.5", KindNoRating},
		{"comma before rating", "Movie,1999,[English],7.5", KindNoRating},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.line, domain.RatingStrict)
			if Kind(err) != c.kind {
				t.Fatalf("期望 %q，实际 err=%v", c.kind, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("期望 *ParseError，实际 %T", err)
			}
			if pe.Error() == "" {
				t.Fatalf("错误信息不应为空")
			}
		})
	}
}

func TestParse_TitleAtLimit(t *testing.T) {
	title := strings.Repeat("a", domain.MaxTitleLen)
	got, err := Parse(title+"1999 [English] 7", domain.RatingStrict)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Title != title {
		t.Fatalf("标题被截断：len=%d", len(got.Title))
	}
}

func TestParse_RatingModes(t *testing.T) {
	cases := []struct {
		rating string
		mode   domain.RatingMode
		want   float64
		ok     bool
	}{
		{"7.5", domain.RatingStrict, 7.5, true},
		{".5", domain.RatingStrict, 0.5, true},
		{"7.", domain.RatingStrict, 7, true},
		{"8e-1x", domain.RatingStrict, 0.8, true},
		{"9e", domain.RatingStrict, 9, true},
		{"6.8 Value", domain.RatingStrict, 6.8, true},
		{"6.8,1234", domain.RatingStrict, 6.8, true},
		{"-1.5", domain.RatingStrict, 0, false},
		{"+2", domain.RatingStrict, 0, false},
		{"-1.5", domain.RatingLenient, -1.5, true},
		{"+2", domain.RatingLenient, 2, true},
		{"-", domain.RatingLenient, 0, false},
		{"abc", domain.RatingLenient, 0, false},
	}
	for _, c := range cases {
		got, err := Parse("M 2000 [English] "+c.rating, c.mode)
		if c.ok {
			if err != nil {
				t.Fatalf("%s/%q：不期望错误：%v", c.mode, c.rating, err)
			}
			if got.Rating != c.want {
				t.Fatalf("%s/%q：期望 %v，实际 %v", c.mode, c.rating, c.want, got.Rating)
			}
			continue
		}
		if Kind(err) != KindNoRating {
			t.Fatalf("%s/%q：期望 %q，实际 err=%v", c.mode, c.rating, KindNoRating, err)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	movies := []domain.Movie{
		{Title: "Movie A", Year: 1999, Languages: []string{"English", "French"}, Rating: 7.5},
		{Title: "Movie, with; punctuation!", Year: 2001, Languages: []string{"German"}, Rating: 6},
		{Title: "Ocean's Eleven", Year: 2001, Languages: []string{"English", "Italian", "Mandarin"}, Rating: 7.7},
		{Title: "", Year: 1920, Languages: []string{""}, Rating: 0.1},
	}
	for _, m := range movies {
		line := fmt.Sprintf("%s %d [%s] %g", m.Title, m.Year, strings.Join(m.Languages, "; "), m.Rating)
		got, err := Parse(line, domain.RatingStrict)
		if err != nil {
			t.Fatalf("%q：不期望错误：%v", line, err)
		}
		if got.Title != m.Title || got.Year != m.Year || got.Rating != m.Rating {
			t.Fatalf("%q：期望 %+v，实际 %+v", line, m, got)
		}
		if !reflect.DeepEqual(got.Languages, m.Languages) {
			t.Fatalf("%q：期望语言 %q，实际 %q", line, m.Languages, got.Languages)
		}
	}
}
