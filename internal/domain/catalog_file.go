package domain

// CatalogFile 描述一次扫描得到的目录文件（只做 stat，不读内容）。
//
// 不变量：AbsPath 必须是 clean + absolute。
type CatalogFile struct {
	AbsPath string
	RelPath string
	Ext     string // 小写，例如 ".txt"
	Size    int64
}

// FormatForExt 按扩展名决定读取方式：.html/.htm 走 HTML 表格，其它按文本行。
func FormatForExt(ext string) string {
	switch ext {
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatText
	}
}
