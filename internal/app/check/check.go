package check

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/moviecat/internal/app"
	"github.com/John-Robertt/moviecat/internal/catalog"
	"github.com/John-Robertt/moviecat/internal/config"
	"github.com/John-Robertt/moviecat/internal/domain"
	"github.com/John-Robertt/moviecat/internal/scan"
)

// Execute 加载 eff.Path（单个文件或整个目录）下的所有目录文件，并返回对外稳定的 CheckReport。
// 单个文件失败只记录在该文件的 FileReport 中，不影响其他文件。
func Execute(ctx context.Context, eff config.EffectiveConfig, log *slog.Logger, obs Observer) domain.CheckReport {
	started := time.Now().UTC()
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.CheckReport{
		RunID:      uuid.NewString(),
		Path:       eff.Path,
		RatingMode: eff.RatingMode,
		StartedAt:  started,
		Files:      make([]domain.FileReport, 0, 16),
	}

	scanStarted := time.Now()
	files, err := collect(eff)
	if err != nil {
		rr.Files = append(rr.Files, domain.FileReport{
			Path:      eff.Path,
			Format:    app.FormatOf(eff.Path),
			ErrorCode: domain.ErrCodeOpenFailed,
			ErrorMsg:  fmt.Sprintf("扫描失败：%v", err),
		})
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}
	if obs != nil {
		obs.OnScanDone(len(files), time.Since(scanStarted))
	}

	// 按文件并发（worker pool），文件内串行。
	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	type result struct {
		rep domain.FileReport
		dur time.Duration
	}

	jobs := make(chan domain.CatalogFile)
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				oneStarted := time.Now()
				results <- result{rep: checkOne(ctx, f, eff.RatingMode, log), dur: time.Since(oneStarted)}
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Files = append(rr.Files, it.rep)
		if obs != nil {
			obs.OnFileDone(done, len(files), it.rep, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// collect 把 eff.Path 展开为待检查的文件列表：目录走 scan，单文件原样返回（不看扩展名）。
func collect(eff config.EffectiveConfig) ([]domain.CatalogFile, error) {
	fi, err := os.Stat(eff.Path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return scan.ScanCatalogs(eff.Path, eff.ExcludeDirs)
	}
	return []domain.CatalogFile{{
		AbsPath: eff.Path,
		RelPath: filepath.Base(eff.Path),
		Ext:     strings.ToLower(filepath.Ext(eff.Path)),
		Size:    fi.Size(),
	}}, nil
}

func checkOne(ctx context.Context, f domain.CatalogFile, mode domain.RatingMode, log *slog.Logger) domain.FileReport {
	rec := app.NewReportObserver(f.RelPath, app.FormatOf(f.AbsPath))
	if err := ctx.Err(); err != nil {
		rec.Fail(domain.ErrCodeReadFailed, fmt.Sprintf("已取消：%v", err))
		return rec.Report()
	}

	obs := catalog.Observers{rec, app.LogObserver{Log: log, Path: f.RelPath}}
	if _, _, err := app.LoadFile(f.AbsPath, mode, obs); err != nil {
		code := app.ErrorCode(err)
		if code == "" {
			code = domain.ErrCodeReadFailed
		}
		rec.Fail(code, err.Error())
	}
	return rec.Report()
}
