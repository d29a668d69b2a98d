package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/moviecat/internal/domain"
)

func TestLoadEffective_ConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ConfigMissingPath(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, JSONFileName), []byte(`{"rating_mode":"lenient"}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingPath, err, Code(err))
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()
	file := filepath.Join(cwd, "movies.txt")

	eff, err := LoadEffective(cwd, CLIArgs{Path: "movies.txt"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != file {
		t.Fatalf("期望 path=%q，实际=%q", file, eff.Path)
	}
	if eff.ConfigPath != "" {
		t.Fatalf("没有配置文件时 ConfigPath 应为空，实际=%q", eff.ConfigPath)
	}
	if eff.RatingMode != domain.RatingStrict || eff.LogLevel != DefaultLogLevel || eff.LogFormat != DefaultLogFormat {
		t.Fatalf("默认值不正确：%+v", eff)
	}
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, JSONFileName), []byte(`{"path":"movies.txt","rating_mode":"lenient","log_level":"debug","log_format":"json"}`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.RatingMode != domain.RatingLenient || eff.LogLevel != "debug" || eff.LogFormat != "json" {
		t.Fatalf("应使用配置文件中的值：%+v", eff)
	}
	if want := filepath.Join(cwd, "movies.txt"); eff.Path != want {
		t.Fatalf("期望 path=%q，实际=%q", want, eff.Path)
	}

	eff, err = LoadEffective(cwd, CLIArgs{
		RatingMode:    "strict",
		RatingModeSet: true,
		LogLevel:      "ERROR",
		LogLevelSet:   true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.RatingMode != domain.RatingStrict || eff.LogLevel != "error" || eff.LogFormat != "json" {
		t.Fatalf("CLI 应覆盖配置文件：%+v", eff)
	}
}

func TestLoadEffective_ConfigNextToCatalogFile(t *testing.T) {
	cwd := t.TempDir()
	dir := filepath.Join(cwd, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	writeFile(t, filepath.Join(dir, JSONFileName), []byte(`{"rating_mode":"lenient"}`))

	eff, err := LoadEffective(cwd, CLIArgs{Path: filepath.Join("data", "movies.txt")})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.RatingMode != domain.RatingLenient {
		t.Fatalf("应读取目录文件旁边的配置：%+v", eff)
	}

	// path 是目录时（check <dir>），配置在目录内。
	eff, err = LoadEffective(cwd, CLIArgs{Path: "data"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ConfigPath != filepath.Join(dir, JSONFileName) {
		t.Fatalf("期望读取 %q，实际 %q", filepath.Join(dir, JSONFileName), eff.ConfigPath)
	}
}

func TestLoadEffective_TOML(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, TOMLFileName), []byte(`
path = "catalog"
rating_mode = "lenient"
log_format = "json"
exclude_dirs = ["old", "tmp"]
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != filepath.Join(cwd, "catalog") || eff.RatingMode != domain.RatingLenient || eff.LogFormat != "json" {
		t.Fatalf("TOML 配置未生效：%+v", eff)
	}
	if len(eff.ExcludeDirs) != 2 || eff.ExcludeDirs[0] != "old" {
		t.Fatalf("exclude_dirs 不正确：%v", eff.ExcludeDirs)
	}
}

func TestLoadEffective_JSONWinsOverTOML(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, JSONFileName), []byte(`{"path":"from-json"}`))
	writeFile(t, filepath.Join(cwd, TOMLFileName), []byte(`path = "from-toml"`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != filepath.Join(cwd, "from-json") {
		t.Fatalf("moviecat.json 应优先：%q", eff.Path)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		JSONFileName: `{`,
		TOMLFileName: `path = `,
	}
	for name, content := range cases {
		cwd := t.TempDir()
		writeFile(t, filepath.Join(cwd, name), []byte(content))

		_, err := LoadEffective(cwd, CLIArgs{})
		if Code(err) != ErrCodeInvalid {
			t.Fatalf("%s：期望 %q，实际 err=%v (code=%q)", name, ErrCodeInvalid, err, Code(err))
		}
	}
}

func TestLoadEffective_InvalidValues(t *testing.T) {
	cases := []string{
		`{"path":"p","rating_mode":"loose"}`,
		`{"path":"p","log_level":"trace"}`,
		`{"path":"p","log_format":"xml"}`,
	}
	for _, content := range cases {
		cwd := t.TempDir()
		writeFile(t, filepath.Join(cwd, JSONFileName), []byte(content))

		_, err := LoadEffective(cwd, CLIArgs{})
		if Code(err) != ErrCodeInvalid {
			t.Fatalf("%s：期望 %q，实际 err=%v (code=%q)", content, ErrCodeInvalid, err, Code(err))
		}
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
