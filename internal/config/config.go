package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/John-Robertt/moviecat/internal/domain"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 moviecat.json / moviecat.toml。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = domain.ErrCodeConfigMissingPath
)

const (
	JSONFileName = "moviecat.json"
	TOMLFileName = "moviecat.toml"
)

const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// CLIArgs 保留“是否显式指定”的信息，保证 CLI 能覆盖配置文件里的同名字段。
type CLIArgs struct {
	Path string

	RatingMode    string
	RatingModeSet bool

	LogLevel    string
	LogLevelSet bool

	LogFormat    string
	LogFormatSet bool
}

// FileConfig 对应 moviecat.json / moviecat.toml 的解析结构。
type FileConfig struct {
	Path        string   `json:"path" toml:"path"`
	RatingMode  string   `json:"rating_mode" toml:"rating_mode"`
	LogLevel    string   `json:"log_level" toml:"log_level"`
	LogFormat   string   `json:"log_format" toml:"log_format"`
	ExcludeDirs []string `json:"exclude_dirs" toml:"exclude_dirs"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置。
type EffectiveConfig struct {
	// Path 是目录文件（或 check 的目录）的 clean + absolute 路径。
	Path string
	// ConfigPath 是实际读到的配置文件；没有读到时为空。
	ConfigPath string

	RatingMode domain.RatingMode
	LogLevel   string
	LogFormat  string

	ExcludeDirs []string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 提供 path：在 path 所在目录（path 本身是目录时就是它）查找配置（可选）
// 2) CLI 未提供 path：必须读取 <cwd> 下的配置，且其中必须包含 path
// 同一目录下 moviecat.json 优先；不存在时才读 moviecat.toml。
//
// 覆盖优先级：CLI > 配置文件 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		absPath := absCleanFrom(cwdAbs, cli.Path)
		dir := absPath
		if fi, err := os.Stat(absPath); err != nil || !fi.IsDir() {
			// 文件不存在也照常合并：打开失败属于加载阶段的错误，不是配置错误。
			dir = filepath.Dir(absPath)
		}

		fc, cfgPath, err := readFileConfig(dir)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	fc, cfgPath, err := readFileConfig(cwdAbs)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if cfgPath == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: filepath.Join(cwdAbs, JSONFileName), Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	// 配置里的相对 path 以配置文件所在目录为基准。
	return merge(absCleanFrom(cwdAbs, fc.Path), cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	mode := fc.RatingMode
	if cli.RatingModeSet {
		mode = cli.RatingMode
	}
	rm, ok := domain.ParseRatingMode(strings.TrimSpace(mode))
	if !ok {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("rating_mode 只能是 strict 或 lenient，实际是 %q", mode)}
	}

	level := pick(cli.LogLevelSet, cli.LogLevel, fc.LogLevel, DefaultLogLevel)
	if err := ValidateLogLevel(level); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	format := pick(cli.LogFormatSet, cli.LogFormat, fc.LogFormat, DefaultLogFormat)
	if err := ValidateLogFormat(format); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return EffectiveConfig{
		Path:        absPath,
		ConfigPath:  cfgPath,
		RatingMode:  rm,
		LogLevel:    level,
		LogFormat:   format,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

func pick(cliSet bool, cliVal, fileVal, def string) string {
	if cliSet {
		return strings.ToLower(strings.TrimSpace(cliVal))
	}
	if v := strings.TrimSpace(fileVal); v != "" {
		return strings.ToLower(v)
	}
	return def
}

func ValidateLogLevel(s string) error {
	switch s {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log_level 只能是 debug|info|warn|error，实际是 %q", s)
	}
}

func ValidateLogFormat(s string) error {
	switch s {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("log_format 只能是 text|json，实际是 %q", s)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 在 dir 下依次尝试 moviecat.json、moviecat.toml。
// 都不存在时返回空 cfgPath（不算错误）。
func readFileConfig(dir string) (fc FileConfig, cfgPath string, err error) {
	jsonPath := filepath.Join(dir, JSONFileName)
	b, err := os.ReadFile(jsonPath)
	if err == nil {
		if err := json.Unmarshal(b, &fc); err != nil {
			return FileConfig{}, jsonPath, err
		}
		return fc, jsonPath, nil
	}
	if !os.IsNotExist(err) {
		return FileConfig{}, jsonPath, err
	}

	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, "", nil
		}
		return FileConfig{}, tomlPath, err
	}
	if _, err := toml.DecodeFile(tomlPath, &fc); err != nil {
		return FileConfig{}, tomlPath, err
	}
	return fc, tomlPath, nil
}
