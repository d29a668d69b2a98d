// Package sniff 在加载前识别明显不是文本目录的输入（图片、压缩包、音视频等）。
package sniff

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// HeaderSize 是 filetype 匹配所需的最大头部长度。
const HeaderSize = 261

// BinaryError 表示输入被识别为二进制格式。属于文件级失败。
type BinaryError struct {
	Extension string
	MIME      string
}

func (e *BinaryError) Error() string {
	return fmt.Sprintf("输入看起来是二进制文件（%s, %s），不是文本目录", e.Extension, e.MIME)
}

func IsBinary(err error) bool {
	var e *BinaryError
	return errors.As(err, &e)
}

// Check 根据文件头判断输入能否按文本目录处理。
//
// 只有同时满足两个条件才判为二进制：
// 1) filetype 能识别出具体类型
// 2) 头部含 NUL 或非法 UTF-8
// 第 2 条用来排除“标题恰好以 BM / MZ 之类魔数开头”的纯文本误判。
func Check(head []byte) error {
	if len(head) > HeaderSize {
		head = head[:HeaderSize]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil
	}
	if looksLikeText(head) {
		return nil
	}
	return &BinaryError{Extension: kind.Extension, MIME: kind.MIME.Value}
}

func looksLikeText(b []byte) bool {
	for i := 0; i < len(b); {
		if b[i] == 0 {
			return false
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			// 头部截断在多字节字符中间不算非法。
			return !utf8.FullRune(b[i:])
		}
		i += size
	}
	return true
}
