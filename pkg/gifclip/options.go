package gifclip

import (
	"github.com/user/gifclip/pkg/pipeline"
)

func qualityFromString(s string) pipeline.Quality {
	switch s {
	case "low":
		return pipeline.QualityLow
	case "high":
		return pipeline.QualityHigh
	default:
		return pipeline.QualityMedium
	}
}

func strategyFromString(s string) pipeline.Strategy {
	switch s {
	case "surface":
		return pipeline.StrategySurface
	case "decode":
		return pipeline.StrategyDecode
	default:
		return pipeline.StrategyAuto
	}
}
