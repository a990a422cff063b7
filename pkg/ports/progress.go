package ports

// Progress stages reported to the sink, in pipeline order.
const (
	StageCapture  = "capture"
	StageQuantize = "quantize"
	StageEncode   = "encode"
	StageFinalize = "finalize"
	StageFailed   = "failed"
)

// ProgressSink receives unified pipeline progress. Percent is on a single
// 0-100 scale across all stages. Implementations must be cheap; the pipeline
// calls the sink from its hot per-frame loops.
type ProgressSink func(stage string, percent int, message string)

// NopProgress discards all progress notifications.
func NopProgress(string, int, string) {}
