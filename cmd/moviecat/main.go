package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/moviecat/internal/app"
	"github.com/John-Robertt/moviecat/internal/app/check"
	"github.com/John-Robertt/moviecat/internal/config"
	"github.com/John-Robertt/moviecat/internal/domain"
	"github.com/John-Robertt/moviecat/internal/htmltable"
	"github.com/John-Robertt/moviecat/internal/infra/fsx"
)

// reportFileName 是 check --write-report 写入的文件名（位于被检查目录或文件所在目录）。
const reportFileName = "moviecat-report.json"

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	var code int
	switch args[0] {
	case "run":
		code = runCmd(args[1:], os.Stdin, os.Stdout, os.Stderr)
	case "check":
		code = checkCmd(args[1:])
	case "export":
		code = exportCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

// runCmd 加载单个目录文件，打印汇总行后进入交互菜单。
func runCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}

	ca, err := parseCmdArgs("run", args)
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}
	if ca.Path == "" {
		// 交互模式必须明确给出文件，不从配置文件推断。
		fmt.Fprintln(stderr, "You must provide the name of the file to process")
		fmt.Fprintln(stderr, "Example usage: moviecat run movies.csv")
		return 1
	}

	eff, log, code := loadConfig(ca, stderr)
	if code != 0 {
		return code
	}

	c, stats, err := app.LoadFile(eff.Path, eff.RatingMode, app.LogObserver{Log: log, Path: ca.Path})
	if err != nil {
		reportLoadError(stderr, err)
		return 1
	}
	log.Debug("目录已加载", slog.String("path", eff.Path), slog.Int("loaded", stats.Loaded), slog.Int("skipped", stats.Skipped))

	fmt.Fprintf(stdout, "Processed file %s and parsed data for %d movies\n", ca.Path, c.Len())

	if err := runMenu(stdin, stdout, c); err != nil {
		fmt.Fprintf(stderr, "读取输入失败：%v\n", err)
		return 1
	}
	return 0
}

// checkCmd 非交互地加载一个文件或目录，输出 CheckReport。
func checkCmd(args []string) int {
	if wantsHelp(args) {
		printCheckUsage()
		return 0
	}

	ca, err := parseCmdArgs("check", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printCheckUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cwdAbs, _ := filepath.Abs(cwd)

	eff, err := config.LoadEffective(cwd, ca.CLIArgs)
	if err != nil {
		emitReport(reportForConfigError(cwdAbs, err))
		return 1
	}
	log, err := app.NewLogger(eff.LogLevel, eff.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败：%v\n", err)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs check.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := check.Execute(context.Background(), eff, log, obs)

	if ca.WriteReport {
		dir := reportDir(eff.Path)
		if err := writeReportFile(dir, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入 %s 失败：%v\n", reportFileName, err)
			emitReport(rr)
			return 1
		}
		if interactive {
			fmt.Fprintf(progressW, "report: %s\n", filepath.Join(dir, reportFileName))
		}
	}

	emitReport(rr)
	if rr.Clean() {
		return 0
	}
	return 1
}

// exportCmd 加载目录文件并把它写成 HTML 表格（可以再被 run/check 读回）。
func exportCmd(args []string) int {
	if wantsHelp(args) {
		printExportUsage()
		return 0
	}

	ca, err := parseCmdArgs("export", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printExportUsage()
		return 2
	}
	if ca.Out == "" {
		fmt.Fprint(os.Stderr, "参数错误：export 需要 --out\n\n")
		printExportUsage()
		return 2
	}

	eff, log, code := loadConfig(ca, os.Stderr)
	if code != 0 {
		return code
	}

	c, stats, err := app.LoadFile(eff.Path, eff.RatingMode, app.LogObserver{Log: log, Path: eff.Path})
	if err != nil {
		reportLoadError(os.Stderr, err)
		return 1
	}

	var buf bytes.Buffer
	title := strings.TrimSuffix(filepath.Base(eff.Path), filepath.Ext(eff.Path))
	if err := htmltable.Encode(&buf, title, c.All()); err != nil {
		fmt.Fprintf(os.Stderr, "生成 HTML 失败：%v\n", err)
		return 1
	}

	outAbs, err := filepath.Abs(ca.Out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无效的 --out：%v\n", err)
		return 1
	}
	policy := fsx.KeepExisting
	if ca.Force {
		policy = fsx.Overwrite
	}
	if err := fsx.WriteAtomic(outAbs, buf.Bytes(), policy); err != nil {
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintf(os.Stderr, "%s 已存在；使用 --force 覆盖\n", outAbs)
			return 1
		}
		fmt.Fprintf(os.Stderr, "写入 %s 失败：%v\n", outAbs, err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "完成：exported=%d skipped=%d out=%s\n", stats.Loaded, stats.Skipped, outAbs)
	return 0
}

// loadConfig 合并配置并构造日志；失败时已把原因写到 stderr，返回非 0 退出码。
func loadConfig(ca cmdArgs, stderr io.Writer) (config.EffectiveConfig, *slog.Logger, int) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
		return config.EffectiveConfig{}, nil, 1
	}
	eff, err := config.LoadEffective(cwd, ca.CLIArgs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", config.Code(err), err)
		return config.EffectiveConfig{}, nil, 1
	}
	if fi, err := os.Stat(eff.Path); err == nil && fi.IsDir() {
		fmt.Fprintf(stderr, "%s 是目录；目录请使用 moviecat check\n", eff.Path)
		return config.EffectiveConfig{}, nil, 1
	}
	log, err := app.NewLogger(eff.LogLevel, eff.LogFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "初始化日志失败：%v\n", err)
		return config.EffectiveConfig{}, nil, 1
	}
	return eff, log, 0
}

func reportLoadError(w io.Writer, err error) {
	switch app.ErrorCode(err) {
	case domain.ErrCodeOpenFailed:
		fmt.Fprintf(w, "Error opening file: %v\n", errors.Unwrap(err))
	case domain.ErrCodeNoHeader:
		fmt.Fprintln(w, "Error reading header or empty file.")
	default:
		fmt.Fprintln(w, err)
	}
}

type cmdArgs struct {
	config.CLIArgs

	WriteReport bool
	Out         string
	Force       bool
}

func parseCmdArgs(cmd string, args []string) (cmdArgs, error) {
	ca := cmdArgs{}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		name, inline, hasInline := strings.Cut(a, "=")
		if !strings.HasPrefix(a, "--") {
			hasInline = false
			name = a
		}

		var v string
		var err error
		switch name {
		case "--rating-mode", "--log-level", "--log-format", "--out":
			if hasInline {
				v = inline
			} else if v, err = value(&i, name); err != nil {
				return cmdArgs{}, err
			}
			if name != "--out" {
				v = strings.ToLower(strings.TrimSpace(v))
			}
		}

		switch {
		case name == "--rating-mode":
			if _, ok := domain.ParseRatingMode(v); !ok || v == "" {
				return cmdArgs{}, fmt.Errorf("--rating-mode 只能是 strict 或 lenient，实际是 %q", v)
			}
			ca.RatingMode, ca.RatingModeSet = v, true
		case name == "--log-level":
			if err := config.ValidateLogLevel(v); err != nil {
				return cmdArgs{}, err
			}
			ca.LogLevel, ca.LogLevelSet = v, true
		case name == "--log-format":
			if err := config.ValidateLogFormat(v); err != nil {
				return cmdArgs{}, err
			}
			ca.LogFormat, ca.LogFormatSet = v, true
		case name == "--write-report" && cmd == "check" && !hasInline:
			ca.WriteReport = true
		case name == "--out" && cmd == "export":
			if strings.TrimSpace(v) == "" {
				return cmdArgs{}, fmt.Errorf("--out 不能为空")
			}
			ca.Out = v
		case name == "--force" && cmd == "export" && !hasInline:
			ca.Force = true
		case strings.HasPrefix(a, "-") && a != "-":
			return cmdArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ca.Path != "" {
				return cmdArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
			}
			ca.Path = a
		}
	}
	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if isHelp(a) {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviecat run <file> [--rating-mode strict|lenient] [--log-level L] [--log-format F]
  moviecat check [path] [--write-report] [--rating-mode strict|lenient]
  moviecat export [file] --out <file.html> [--force]

命令：
  run     加载目录文件并进入交互菜单
  check   检查一个文件或目录下的所有目录文件，输出报告
  export  把目录文件导出为 HTML 表格

使用 "moviecat <命令> --help" 查看详细说明。
`)
}

const commonFlagsUsage = `  --rating-mode  评分解析模式：strict（默认，只接受数字或 '.' 开头）| lenient（允许正负号）
  --log-level    日志级别：debug|info|warn|error（默认 warn；日志写 stderr）
  --log-format   日志格式：text|json（默认 text）
  -h, --help     显示帮助
`

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviecat run <file> [flags]

参数：
`+commonFlagsUsage)
}

func printCheckUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviecat check [path] [flags]

未给出 path 时读取当前目录下 moviecat.json / moviecat.toml 中的 path。

参数：
  --write-report 把报告原子写入 <dir>/`+reportFileName+`
`+commonFlagsUsage)
}

func printExportUsage() {
	fmt.Fprint(os.Stdout, `用法：
  moviecat export [file] --out <file.html> [flags]

参数：
  --out          输出 HTML 文件路径（必填）
  --force        覆盖已存在的输出文件
`+commonFlagsUsage)
}

func emitReport(rr domain.CheckReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：files=%d failed=%d loaded=%d skipped=%d\n",
			rr.Summary.Files, rr.Summary.Failed, rr.Summary.Loaded, rr.Summary.Skipped,
		)
		for _, f := range rr.Files {
			if f.Failed() {
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", f.Path, f.ErrorCode, f.ErrorMsg)
				continue
			}
			for _, l := range f.Lines {
				fmt.Fprintf(os.Stderr, "%s:%d %s: %s\n", f.Path, l.Line, l.Kind, truncate(l.Text, 120))
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 CheckReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：files=%d failed=%d loaded=%d skipped=%d\n",
		rr.Summary.Files, rr.Summary.Failed, rr.Summary.Loaded, rr.Summary.Skipped,
	)
}

func reportForConfigError(cwdAbs string, err error) domain.CheckReport {
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	now := time.Now().UTC()
	rr := domain.CheckReport{
		Path:       cwdAbs,
		RatingMode: domain.RatingStrict,
		StartedAt:  now,
		FinishedAt: now,
		Files: []domain.FileReport{{
			Path:      cwdAbs,
			Format:    domain.FormatText,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

// reportDir 返回 --write-report 的目标目录：path 是目录则为它本身，否则为文件所在目录。
func reportDir(path string) string {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func writeReportFile(dir string, rr domain.CheckReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteAtomic(filepath.Join(dir, reportFileName), b, fsx.Overwrite)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
