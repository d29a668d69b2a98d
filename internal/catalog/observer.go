package catalog

// Observer 是加载阶段的诊断通道：把“哪些行被跳过、最终加载了多少条”从加载逻辑中解耦出来。
//
// catalog 包只发事件，不做任何输出；日志/报表由调用方决定。
type Observer interface {
	// OnLineSkipped 在某行无法解析时调用。lineNo 从 1 开始（表头是第 1 行）。
	OnLineSkipped(lineNo int, raw string, err error)
	// OnLoaded 在加载结束时调用一次。
	OnLoaded(loaded, skipped int)
}

// Observers 把多个 Observer 串成一个，按顺序转发事件。
type Observers []Observer

func (obs Observers) OnLineSkipped(lineNo int, raw string, err error) {
	for _, o := range obs {
		if o != nil {
			o.OnLineSkipped(lineNo, raw, err)
		}
	}
}

func (obs Observers) OnLoaded(loaded, skipped int) {
	for _, o := range obs {
		if o != nil {
			o.OnLoaded(loaded, skipped)
		}
	}
}
