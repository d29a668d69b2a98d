// Package htmltable 在目录文本行与 HTML 表格之间转换。
//
// 读取：取文档中第一个 <table>，每个 <tr> 还原成一行旧格式文本
// "<title> <year> [<l1>; <l2>] <rating> ..."，之后交给同一个 record.Parse，
// 保证两种输入走完全相同的解析规则。第一行视为表头。
//
// 写出：Encode 生成的表格带 class="moviecat"，ReadLines 对这种表格逐字读取单元格，
// 标题里的连续空格、前导空格都能原样读回。其它来源的表格按浏览器渲染的方式规范化空白。
package htmltable

import (
	"errors"
	"html/template"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/moviecat/internal/domain"
)

// ErrNoTable 表示 HTML 中没有 <table>。
var ErrNoTable = errors.New("htmltable: 文档中没有 <table>")

// languagesCol 是语言列的下标（0 起）。
const languagesCol = 2

// exportClass 标记由 Encode 生成的表格。
const exportClass = "moviecat"

// ReadLines 把第一个 <table> 的每一行转换为一行文本。
//
// - Encode 生成的表格：单元格文本逐字保留
// - 其它表格：单元格文本先做空白规范化（多个空白合并为一个空格）
// - 行内单元格数 >= 4 时，第 3 列若没有方括号会自动补上
// - 空行（没有任何单元格）跳过
func ReadLines(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	verbatim := table.HasClass(exportClass)

	var lines []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// 嵌套表格的行不属于当前表格。
		if tr.ParentsFiltered("table").First().Get(0) != table.Get(0) {
			return
		}
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		parts := make([]string, 0, cells.Length())
		cells.Each(func(i int, td *goquery.Selection) {
			if verbatim {
				parts = append(parts, td.Text())
				return
			}
			parts = append(parts, normSpace(td.Text()))
		})
		if len(parts) >= 4 && tr.ChildrenFiltered("td").Length() > 0 {
			parts[languagesCol] = bracket(parts[languagesCol])
		}
		lines = append(lines, strings.Join(parts, " "))
	})
	return lines, nil
}

func bracket(s string) string {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s
	}
	return "[" + s + "]"
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

var pageTmpl = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<table class="{{.Class}}">
<thead>
<tr><th>Title</th><th>Year</th><th>Languages</th><th>Rating</th></tr>
</thead>
<tbody>
{{- range .Rows}}
<tr><td class="title">{{.Title}}</td><td class="year">{{.Year}}</td><td class="languages">[{{.Languages}}]</td><td class="rating">{{.Rating}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type row struct {
	Title     string
	Year      int
	Languages string
	Rating    string
}

// Encode 把 movies 写成 HTML 表格。
func Encode(w io.Writer, title string, movies iter.Seq[domain.Movie]) error {
	var rows []row
	for m := range movies {
		rows = append(rows, row{
			Title:     m.Title,
			Year:      m.Year,
			Languages: strings.Join(m.Languages, "; "),
			Rating:    strconv.FormatFloat(m.Rating, 'f', -1, 64),
		})
	}
	return pageTmpl.Execute(w, struct {
		Title string
		Class string
		Rows  []row
	}{Title: title, Class: exportClass, Rows: rows})
}
