package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/moviecat/internal/catalog"
	"github.com/John-Robertt/moviecat/internal/domain"
	"github.com/John-Robertt/moviecat/internal/htmltable"
	"github.com/John-Robertt/moviecat/internal/infra/sniff"
)

// FileError 是文件级加载失败（区别于逐行解析失败），Code 取 domain.ErrCode*。
type FileError struct {
	Code string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	switch e.Code {
	case domain.ErrCodeOpenFailed:
		return fmt.Sprintf("无法打开文件 %s：%v", e.Path, e.Err)
	case domain.ErrCodeNoHeader:
		return fmt.Sprintf("文件 %s 没有表头（空文件？）", e.Path)
	case domain.ErrCodeBinaryInput:
		return fmt.Sprintf("文件 %s 不是文本目录：%v", e.Path, e.Err)
	default:
		return fmt.Sprintf("读取文件 %s 失败：%v", e.Path, e.Err)
	}
}

func (e *FileError) Unwrap() error { return e.Err }

// ErrorCode 从 error 中提取文件级 error_code；若不是 *FileError 则返回空串。
func ErrorCode(err error) string {
	var e *FileError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadFile 打开 path 并加载为 Catalog。
//
// 流程：先 Peek 头部做二进制嗅探；再按扩展名选择读取方式（.html/.htm 走表格，其它按文本行）。
// 逐行解析失败只通过 obs 报告，不会让本函数返回错误。
func LoadFile(path string, mode domain.RatingMode, obs catalog.Observer) (*catalog.Catalog, catalog.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeOpenFailed, Path: path, Err: err}
	}
	defer f.Close()

	return LoadReader(f, path, mode, obs)
}

// LoadReader 与 LoadFile 相同，但输入已经打开；name 只用于决定格式与错误信息。
func LoadReader(r io.Reader, name string, mode domain.RatingMode, obs catalog.Observer) (*catalog.Catalog, catalog.Stats, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(sniff.HeaderSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeReadFailed, Path: name, Err: err}
	}
	if err := sniff.Check(head); err != nil {
		return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeBinaryInput, Path: name, Err: err}
	}

	opts := catalog.Options{RatingMode: mode}
	var (
		c     *catalog.Catalog
		stats catalog.Stats
	)
	if FormatOf(name) == domain.FormatHTML {
		lines, e := htmltable.ReadLines(br)
		if e != nil {
			if errors.Is(e, htmltable.ErrNoTable) {
				return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeNoHeader, Path: name, Err: e}
			}
			return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeReadFailed, Path: name, Err: e}
		}
		c, stats, err = catalog.LoadLines(lines, opts, obs)
	} else {
		c, stats, err = catalog.Load(br, opts, obs)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrNoHeader) {
			return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeNoHeader, Path: name, Err: err}
		}
		return nil, catalog.Stats{}, &FileError{Code: domain.ErrCodeReadFailed, Path: name, Err: err}
	}
	return c, stats, nil
}

// FormatOf 按文件扩展名返回 domain.FormatText 或 domain.FormatHTML。
func FormatOf(path string) string {
	return domain.FormatForExt(strings.ToLower(filepath.Ext(path)))
}
