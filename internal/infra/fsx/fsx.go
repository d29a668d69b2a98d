// Package fsx 负责把完整生成好的产物（check 报告、export 的 HTML）一次性落盘。
//
// 读者要么看到旧文件，要么看到完整的新文件，不会看到写了一半的内容：
// 数据先写入目标目录下的临时文件，fsync 后再挂到目标路径上。
package fsx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Policy 决定目标路径已经存在时怎么做。
type Policy int

const (
	// KeepExisting 目标已存在时返回 os.ErrExist，不动已有文件（export 默认）。
	KeepExisting Policy = iota
	// Overwrite 原子替换已有文件（check 报告、export --force）。
	Overwrite
)

// 测试里替换它们来模拟提交失败。
var (
	renameFunc = os.Rename
	linkFunc   = os.Link
)

// NotRegularError 表示目标路径已存在但不是普通文件（目录、设备、符号链接等）。
type NotRegularError struct {
	Path string
	Mode fs.FileMode
}

func (e *NotRegularError) Error() string {
	kind := "非普通文件"
	if e.Mode.IsDir() {
		kind = "目录"
	}
	return fmt.Sprintf("无法写入 %s：目标是%s", e.Path, kind)
}

func IsNotRegular(err error) bool {
	var e *NotRegularError
	return errors.As(err, &e)
}

// WriteAtomic 把 data 写到 path，父目录不存在时会创建。
func WriteAtomic(path string, data []byte, p Policy) error {
	path = filepath.Clean(path)
	if err := checkTarget(path, p); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := stage(dir, filepath.Base(path), data)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := commit(tmp, path, p); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

func checkTarget(path string, p Policy) error {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	case !fi.Mode().IsRegular():
		return &NotRegularError{Path: path, Mode: fi.Mode()}
	case p == KeepExisting:
		return &fs.PathError{Op: "write", Path: path, Err: fs.ErrExist}
	}
	return nil
}

// stage 在 dir 下写好临时文件并返回它的路径；rename/link 不跨目录也就不跨盘。
func stage(dir, base string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()

	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Chmod(0o644)
	}
	if werr == nil {
		werr = f.Sync()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(name)
		return "", werr
	}
	return name, nil
}

// commit 把临时文件挂到目标路径。
// KeepExisting 用 hard link：目标在检查之后才出现时 link 会失败，而 rename 会悄悄覆盖。
func commit(tmp, path string, p Policy) error {
	if p == Overwrite {
		return renameFunc(tmp, path)
	}
	err := linkFunc(tmp, path)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// 不支持硬链接的文件系统：退回到检查 + rename。
	if err := checkTarget(path, p); err != nil {
		return err
	}
	return renameFunc(tmp, path)
}

func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}
