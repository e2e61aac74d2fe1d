package models

// Stage identifies one phase of the submission pipeline.
type Stage string

const (
	StageIdle                 Stage = "IDLE"
	StageValidating           Stage = "VALIDATING"
	StageUploadingThumbnail   Stage = "UPLOADING_THUMBNAIL"
	StageUploadingVideo       Stage = "UPLOADING_VIDEO"
	StageUploadingImages      Stage = "UPLOADING_IMAGES"
	StageUploadingVariantImgs Stage = "UPLOADING_VARIANT_IMAGES"
	StageUploadingDescImages  Stage = "UPLOADING_DESCRIPTION_IMAGES"
	StageProcessingData       Stage = "PROCESSING_DATA"
	StageSavingProduct        Stage = "SAVING_PRODUCT"
	StageCompleted            Stage = "COMPLETED"
	StageError                Stage = "ERROR"
)

// ProgressState is the externally visible snapshot of a submission attempt.
// Percentage is monotonically non-decreasing within one attempt and resets to
// zero only when a new attempt begins.
type ProgressState struct {
	Stage      Stage   `json:"stage"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Message    string  `json:"message"`
	Percentage float64 `json:"percentage"`
	Error      string  `json:"error,omitempty"`
}

// IdleProgress is the zero snapshot a submission returns to after its
// terminal state has been displayed.
func IdleProgress() ProgressState {
	return ProgressState{Stage: StageIdle}
}
