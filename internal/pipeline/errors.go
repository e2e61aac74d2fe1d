package pipeline

import "fmt"

// User-facing messages surfaced by the submission pipeline. The product's
// seller console is Vietnamese; the messages are part of the contract with it.
const (
	MsgNameRequired          = "Vui lòng nhập tên sản phẩm"
	MsgItemTypeRequired      = "Vui lòng chọn ngành hàng"
	MsgDescriptionRequired   = "Vui lòng nhập mô tả sản phẩm"
	MsgTooFewImages          = "Vui lòng tải lên ít nhất 3 hình ảnh sản phẩm"
	MsgThumbnailRequired     = "Vui lòng thêm ảnh bìa cho sản phẩm"
	MsgStoreRequired         = "Vui lòng chọn cửa hàng trước khi tạo sản phẩm."
	MsgTokenMissing          = "Không tìm thấy token xác thực. Vui lòng đăng nhập lại."
	MsgNoVariantSelected     = "Vui lòng chọn ít nhất một biến thể sản phẩm để lưu."
	MsgVariantPriceStock     = "Vui lòng kiểm tra giá và số lượng kho của các biến thể được chọn."
	MsgIncompleteCombination = "Vui lòng điền đầy đủ tên và giá trị cho tất cả thuộc tính của biến thể được chọn."
	MsgDefaultPriceInvalid   = "Vui lòng nhập giá bán hợp lệ"
	MsgDefaultStockInvalid   = "Vui lòng nhập số lượng kho hợp lệ"
	MsgIncompleteSpecs       = "Vui lòng điền đầy đủ tên và giá trị cho tất cả thông số kỹ thuật."
	MsgDescriptionMismatch   = "Số lượng hình ảnh mô tả không khớp"
	MsgDescriptionInvalid    = "Không thể xử lý dữ liệu mô tả sản phẩm"
	MsgSaveConflict          = "Xung đột dữ liệu: Sản phẩm đã bị thay đổi. Vui lòng tải lại trang và thử lại."
	MsgSaveForbidden         = "Bạn không có quyền cập nhật sản phẩm này."
	MsgSaveBadRequest        = "Dữ liệu không hợp lệ."
	MsgSaveGeneric           = "Không thể lưu sản phẩm. Vui lòng thử lại."
)

// ValidationError is a locally detected, pre-network failure. Always
// recoverable by the user editing the draft.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UploadError is a failed asset upload. Aborts the rest of the pipeline;
// assets already uploaded keep their remote URLs.
type UploadError struct {
	Reason error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Reason)
}

func (e *UploadError) Unwrap() error { return e.Reason }

// PersistenceError is a remote rejection of the final save, classified by
// status so the orchestrator can surface a specific message.
type PersistenceError struct {
	Status  int
	Message string
}

func (e *PersistenceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("persistence failed with status %d", e.Status)
}

// DescriptionConsistencyError is an internal invariant violation: the number
// of ephemeral image blocks in the description does not match the number of
// staged description files. Treated as fatal.
type DescriptionConsistencyError struct {
	Blocks int
	Files  int
}

func (e *DescriptionConsistencyError) Error() string { return MsgDescriptionMismatch }

// UserMessage maps a pipeline error to the message shown to the seller.
func UserMessage(err error) string {
	switch e := err.(type) {
	case *ValidationError:
		return e.Message
	case *DescriptionConsistencyError:
		return MsgDescriptionMismatch
	case *UploadError:
		return e.Error()
	case *PersistenceError:
		switch e.Status {
		case 409:
			return MsgSaveConflict
		case 403:
			return MsgSaveForbidden
		case 400:
			if e.Message != "" {
				return e.Message
			}
			return MsgSaveBadRequest
		default:
			return MsgSaveGeneric
		}
	default:
		if err != nil {
			return err.Error()
		}
		return MsgSaveGeneric
	}
}
