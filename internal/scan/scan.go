package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/moviecat/internal/domain"
)

// ScanCatalogs 扫描 root 下的目录文件（.txt/.csv/.html/.htm），并应用目录排除规则。
//
// 规则：
// - 永久排除：以 '.' 开头的子目录（.git 等）
// - excludeDirs：来自配置文件，均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
//
// 扫描阶段只做 stat，不读文件内容。
func ScanCatalogs(root string, excludeDirs []string) ([]domain.CatalogFile, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	files := make([]domain.CatalogFile, 0, 16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || isExcluded(path, excluded)) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcluded(path, excluded) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !isCatalogExt(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.CatalogFile{
			AbsPath: path,
			RelPath: rel,
			Ext:     ext,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func isCatalogExt(ext string) bool {
	switch ext {
	case ".txt", ".csv", ".html", ".htm":
		return true
	default:
		return false
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
