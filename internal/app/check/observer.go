package check

import (
	"time"

	"github.com/John-Robertt/moviecat/internal/config"
	"github.com/John-Robertt/moviecat/internal/domain"
)

// Observer 用于把“检查进度/单文件结果”从核心执行流程中解耦出来。
//
// 约束：
// - check 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：OnFileDone 只在汇总 goroutine 中调用，但 OnStart 与之可能不在同一 goroutine。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnScanDone 在扫描结束时调用（单文件模式下 files=1）。
	OnScanDone(files int, dur time.Duration)
	// OnFileDone 在某个文件加载完成（无论成败）时调用。
	OnFileDone(idx, total int, res domain.FileReport, dur time.Duration)
}
