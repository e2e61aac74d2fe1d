package pipeline

import "github.com/quadramall/seller-api/internal/models"

// stageOrder is the canonical stage sequence used for cumulative weights.
// It follows the order the orchestrator actually runs the stages in; the
// percentage is cumulative weight over this order, so reordering it against
// execution would make the percentage jump backwards mid-attempt.
var stageOrder = []models.Stage{
	models.StageIdle,
	models.StageValidating,
	models.StageUploadingThumbnail,
	models.StageUploadingImages,
	models.StageUploadingVideo,
	models.StageUploadingVariantImgs,
	models.StageUploadingDescImages,
	models.StageProcessingData,
	models.StageSavingProduct,
	models.StageCompleted,
	models.StageError,
}

// stageWeights fixes each stage's share of the overall percentage.
// Non-idle, non-error weights sum to 100.
var stageWeights = map[models.Stage]float64{
	models.StageIdle:                 0,
	models.StageValidating:           5,
	models.StageUploadingThumbnail:   10,
	models.StageUploadingImages:      25,
	models.StageUploadingVideo:       15,
	models.StageUploadingVariantImgs: 15,
	models.StageUploadingDescImages:  15,
	models.StageProcessingData:       5,
	models.StageSavingProduct:        10,
	models.StageCompleted:            5,
	models.StageError:                0,
}

// Advance computes the progress snapshot for a stage transition or a unit of
// sub-progress within a stage. Percentage is the cumulative weight of all
// stages strictly before the given stage plus the weighted fraction
// current/total of the stage itself; a stage with total == 0 counts as
// instantaneously complete so the division is never attempted.
func Advance(stage models.Stage, current, total int, message string, errMsg string) models.ProgressState {
	completed := 0.0
	for _, s := range stageOrder {
		if s == stage {
			break
		}
		if s == models.StageIdle || s == models.StageError {
			continue
		}
		completed += stageWeights[s]
	}

	stageProgress := stageWeights[stage]
	if total > 0 {
		frac := float64(current) / float64(total)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		stageProgress = frac * stageWeights[stage]
	}

	pct := completed + stageProgress
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	return models.ProgressState{
		Stage:      stage,
		Current:    current,
		Total:      total,
		Message:    message,
		Percentage: pct,
		Error:      errMsg,
	}
}
