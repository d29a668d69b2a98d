package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/moviecat/internal/domain"
)

func TestCLI_NoTTY_StdoutOnlyCheckReportJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 CheckReport JSON（进度/日志必须走 stderr 或直接禁用）。
	root := t.TempDir()
	in := filepath.Join(root, "movies.csv")
	data := "Title Year Languages Rating\nThe Matrix 1999 [English] 8.7\nbroken line\n"
	if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
		t.Fatalf("写入目录文件失败：%v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/moviecat", "check", root, "--write-report")
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	// 有被跳过的行：退出码必须是 1。
	var exitErr *exec.ExitError
	if err == nil {
		t.Fatalf("期望非 0 退出码\nstderr=%s", stderr.String())
	}
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("期望退出码 1，实际 err=%v\nstderr=%s", err, stderr.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.CheckReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 CheckReport JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rr.Summary.Loaded != 1 || rr.Summary.Skipped != 1 {
		t.Fatalf("summary 不符合预期：%+v", rr.Summary)
	}
	if strings.Contains(stdout.String(), "配置（生效）") {
		t.Fatalf("stdout 不应包含进度/配置输出：%q", stdout.String())
	}

	if !strings.Contains(stderr.String(), "完成：files=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(root, reportFileName)); err != nil {
		t.Fatalf("--write-report 应写入报告文件：%v", err)
	}
}
