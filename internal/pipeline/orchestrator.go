package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/utils"
)

// Uploader stores one asset and returns its durable URL. One request per
// asset, no chunking; failures abort the submission.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, contentType string) (string, error)
	UploadVideo(ctx context.Context, data []byte, contentType string) (string, error)
}

// Persister saves the assembled product payload. Rejections surface as
// *PersistenceError so the orchestrator can map them to user messages.
type Persister interface {
	Save(ctx context.Context, payload *models.ProductPayload) (*models.Product, error)
}

// ProgressSink receives every progress snapshot the pipeline produces.
type ProgressSink func(models.ProgressState)

// Orchestrator drives one product submission through its stages: validate,
// upload assets, assemble the payload, persist. Stages run strictly
// sequentially; the first failure aborts the rest. Already-uploaded assets
// keep their remote URLs on failure — there is no rollback.
type Orchestrator struct {
	uploader  Uploader
	persister Persister
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(uploader Uploader, persister Persister) *Orchestrator {
	return &Orchestrator{uploader: uploader, persister: persister}
}

// Submit runs the full pipeline for one draft. The returned error is one of
// the pipeline error types; the terminal progress snapshot (completed or
// error) has already been reported through the sink when Submit returns.
func (o *Orchestrator) Submit(ctx context.Context, draft *models.ProductDraft, report ProgressSink) (*models.Product, error) {
	if report == nil {
		report = func(models.ProgressState) {}
	}

	product, err := o.run(ctx, draft, report)
	if err != nil {
		log.Error().Err(err).Str("product", draft.Name).Msg("Product submission failed")
		report(Advance(models.StageError, 0, 0, "", UserMessage(err)))
		return nil, err
	}

	msg := "Sản phẩm đã được tạo thành công!"
	if draft.Editing() {
		msg = "Sản phẩm đã được cập nhật thành công!"
	}
	report(Advance(models.StageCompleted, 0, 0, msg, ""))
	log.Info().Int64("product_id", product.ID).Str("slug", product.Slug).Msg("Product submission completed")
	return product, nil
}

func (o *Orchestrator) run(ctx context.Context, draft *models.ProductDraft, report ProgressSink) (*models.Product, error) {
	// Validation fires before any network call. Reported as 0/1 so the
	// attempt starts at zero percent.
	report(Advance(models.StageValidating, 0, 1, "Đang kiểm tra tính hợp lệ của dữ liệu...", ""))
	if err := Validate(draft); err != nil {
		return nil, err
	}

	// The description count invariant is also checked pre-network so a
	// mismatch never wastes uploads. A description that does not parse as a
	// block document only matters when files were staged against it; one
	// that parses must account for every ephemeral block, staged files or
	// not, or the ephemeral URLs would be persisted verbatim.
	ephemeral := 0
	if blocks, err := ParseDescription(draft.Description); err == nil {
		ephemeral = CountEphemeralImages(blocks)
	} else if len(draft.DescriptionFiles) > 0 {
		return nil, err
	}
	if ephemeral != len(draft.DescriptionFiles) {
		return nil, &DescriptionConsistencyError{Blocks: ephemeral, Files: len(draft.DescriptionFiles)}
	}

	// Thumbnail.
	report(Advance(models.StageUploadingThumbnail, 0, 1, "Đang tải ảnh bìa lên cloud...", ""))
	thumbnailURL, err := o.uploadIfPending(ctx, draft.Thumbnail, false)
	if err != nil {
		return nil, err
	}
	report(Advance(models.StageUploadingThumbnail, 1, 1, "Ảnh bìa đã được tải lên thành công", ""))

	// Gallery images. Track which references were uploaded this session so
	// payload assembly can null out their persisted ids.
	total := len(draft.Images)
	report(Advance(models.StageUploadingImages, 0, total, "Bắt đầu tải hình ảnh sản phẩm...", ""))
	imageURLs := make([]string, total)
	freshImage := make([]bool, total)
	for i, img := range draft.Images {
		freshImage[i] = img.Pending()
		url, err := o.uploadIfPending(ctx, img, false)
		if err != nil {
			return nil, err
		}
		imageURLs[i] = url
		report(Advance(models.StageUploadingImages, i+1, total, fmt.Sprintf("Đã tải %d/%d hình ảnh", i+1, total), ""))
	}

	// Video, only when the draft carries one.
	videoURL := ""
	if draft.Video != nil {
		if draft.Video.Pending() {
			report(Advance(models.StageUploadingVideo, 0, 1, "Đang tải video sản phẩm lên cloud...", ""))
		}
		pending := draft.Video.Pending()
		videoURL, err = o.uploadIfPending(ctx, draft.Video, true)
		if err != nil {
			return nil, err
		}
		if pending {
			report(Advance(models.StageUploadingVideo, 1, 1, "Video đã được tải lên thành công", ""))
		}
	}

	// Variant images for selected variants with a pending file.
	selected := selectedVariants(draft)
	pendingCount := 0
	for _, v := range selected {
		if v.Image.Pending() {
			pendingCount++
		}
	}
	if pendingCount > 0 {
		report(Advance(models.StageUploadingVariantImgs, 0, pendingCount, "Bắt đầu tải hình ảnh biến thể...", ""))
		uploaded := 0
		for _, v := range selected {
			if !v.Image.Pending() {
				continue
			}
			if _, err := o.uploadIfPending(ctx, v.Image, false); err != nil {
				return nil, err
			}
			uploaded++
			report(Advance(models.StageUploadingVariantImgs, uploaded, pendingCount,
				fmt.Sprintf("Đã tải %d/%d hình ảnh biến thể", uploaded, pendingCount), ""))
		}
	}

	// Description images, then the rewrite.
	finalDescription := draft.Description
	if n := len(draft.DescriptionFiles); n > 0 {
		report(Advance(models.StageUploadingDescImages, 0, n, "Bắt đầu tải hình ảnh mô tả...", ""))
		urls := make([]string, 0, n)
		for i, f := range draft.DescriptionFiles {
			url, err := o.uploadIfPending(ctx, f, false)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
			report(Advance(models.StageUploadingDescImages, i+1, n, fmt.Sprintf("Đã tải %d/%d hình ảnh mô tả", i+1, n), ""))
		}

		report(Advance(models.StageProcessingData, 0, 0, "Đang xử lý dữ liệu mô tả...", ""))
		finalDescription, err = RewriteDescription(draft.Description, urls)
		if err != nil {
			return nil, err
		}
	}

	// Final payload assembly.
	report(Advance(models.StageProcessingData, 0, 0, "Đang chuẩn bị dữ liệu sản phẩm...", ""))
	payload := assemblePayload(draft, thumbnailURL, videoURL, imageURLs, freshImage, finalDescription, selected)

	// Persist.
	report(Advance(models.StageSavingProduct, 0, 0, "Đang lưu sản phẩm vào hệ thống...", ""))
	product, err := o.persister.Save(ctx, payload)
	if err != nil {
		if _, ok := err.(*PersistenceError); ok {
			return nil, err
		}
		return nil, &PersistenceError{Status: 0, Message: err.Error()}
	}
	return product, nil
}

// uploadIfPending uploads the reference's staged bytes when present, releases
// them exactly once right after the upload succeeds, and returns the durable
// URL. References without staged bytes pass through with their existing URL.
func (o *Orchestrator) uploadIfPending(ctx context.Context, ref *models.AssetReference, video bool) (string, error) {
	if ref == nil {
		return "", nil
	}
	if !ref.Pending() {
		return ref.RemoteURL, nil
	}

	var url string
	var err error
	if video {
		url, err = o.uploader.UploadVideo(ctx, ref.Data, ref.ContentType)
	} else {
		url, err = o.uploader.UploadImage(ctx, ref.Data, ref.ContentType)
	}
	if err != nil {
		return "", &UploadError{Reason: err}
	}

	ref.Release()
	ref.RemoteURL = url
	return url, nil
}

func selectedVariants(draft *models.ProductDraft) []*models.Variant {
	var out []*models.Variant
	for _, v := range draft.Variants {
		if v.IsSelected {
			out = append(out, v)
		}
	}
	return out
}

// attributeType resolves the declared value type of an attribute by name,
// defaulting to ALL when the attribute is unknown.
func attributeType(draft *models.ProductDraft, name string) string {
	for _, a := range draft.Attributes {
		if a.Name == name {
			return string(a.Type)
		}
	}
	return string(models.AttributeTypeAll)
}

func assemblePayload(draft *models.ProductDraft, thumbnailURL, videoURL string, imageURLs []string, freshImage []bool, description string, selected []*models.Variant) *models.ProductPayload {
	var productID int64
	if draft.ProductID != nil {
		productID = *draft.ProductID
	}

	payload := &models.ProductPayload{
		ID:           productID,
		SellerID:     draft.SellerID,
		Name:         draft.Name,
		Slug:         utils.Slugify(draft.Name),
		Description:  description,
		ThumbnailURL: thumbnailURL,
		VideoURL:     videoURL,
		StoreID:      draft.StoreID,
		ItemTypeID:   draft.ItemType.ID,
	}

	if len(selected) > 0 {
		payload.Variants = make([]models.VariantPayload, 0, len(selected))
		for i, v := range selected {
			sku := v.SKU
			if sku == "" {
				sku = utils.DefaultVariantSKU(draft.ProductID, i)
			}
			details := make([]models.ProductDetail, 0, len(v.Combination))
			for _, comb := range v.Combination {
				details = append(details, models.ProductDetail{
					AttributeValue: models.AttributeValuePayload{
						AttributeName: comb.AttributeName,
						Value:         comb.Value,
						TypesValue:    attributeType(draft, comb.AttributeName),
					},
				})
			}
			vp := models.VariantPayload{
				SKU:            sku,
				Price:          v.Price,
				StockQuantity:  v.Stock,
				ImageURL:       variantImageURL(v),
				IsActive:       v.IsActive,
				ProductDetails: details,
			}
			if draft.Editing() && v.ID > 0 {
				id := v.ID
				vp.ID = &id
			}
			payload.Variants = append(payload.Variants, vp)
		}
	} else {
		// No attributes: one implicit variant from the defaults.
		payload.Variants = []models.VariantPayload{{
			SKU:            utils.DefaultSingleSKU(draft.ProductID),
			Price:          draft.Defaults.Price,
			StockQuantity:  draft.Defaults.Stock,
			ImageURL:       "",
			IsActive:       true,
			ProductDetails: []models.ProductDetail{},
		}}
	}

	payload.AddonGroups = make([]models.AddonGroupPayload, 0, len(draft.AddonGroups))
	for _, g := range draft.AddonGroups {
		addons := make([]models.AddonPayload, 0, len(g.Addons))
		for _, a := range g.Addons {
			addons = append(addons, models.AddonPayload{
				ID:          a.ID,
				Name:        a.Name,
				PriceAdjust: a.PriceAdjust,
				Active:      a.Active,
			})
		}
		payload.AddonGroups = append(payload.AddonGroups, models.AddonGroupPayload{
			ID:        g.ID,
			Name:      g.Name,
			MaxChoice: g.MaxChoice,
			Addons:    addons,
		})
	}

	payload.Specifications = make([]models.SpecificationPayload, 0, len(draft.Specifications))
	for _, s := range draft.Specifications {
		payload.Specifications = append(payload.Specifications, models.SpecificationPayload{
			ID:                s.ID,
			SpecificationName: s.Name,
			Value:             s.Value,
		})
	}

	payload.Images = make([]models.ImagePayload, 0, len(draft.Images))
	for i, img := range draft.Images {
		var id *int64
		if !freshImage[i] {
			id = img.ID
		}
		payload.Images = append(payload.Images, models.ImagePayload{ID: id, ImageURL: imageURLs[i]})
	}

	return payload
}

func variantImageURL(v *models.Variant) string {
	if v.Image == nil {
		return ""
	}
	return v.Image.RemoteURL
}

// Validate applies the fail-fast submission checks: required fields first,
// then the variant rules, then specifications. The first violation aborts
// with its user-facing message.
func Validate(draft *models.ProductDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return &ValidationError{Message: MsgNameRequired}
	}
	if draft.ItemType == nil || draft.ItemType.ID == 0 {
		return &ValidationError{Message: MsgItemTypeRequired}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return &ValidationError{Message: MsgDescriptionRequired}
	}
	if len(draft.Images) < 3 {
		return &ValidationError{Message: MsgTooFewImages}
	}
	if draft.Thumbnail == nil || (!draft.Thumbnail.Pending() && draft.Thumbnail.RemoteURL == "") {
		return &ValidationError{Message: MsgThumbnailRequired}
	}
	if draft.StoreID == 0 {
		return &ValidationError{Message: MsgStoreRequired}
	}
	if draft.SellerID == 0 {
		return &ValidationError{Message: MsgTokenMissing}
	}

	if len(draft.Attributes) > 0 {
		selected := selectedVariants(draft)
		if len(selected) == 0 {
			return &ValidationError{Message: MsgNoVariantSelected}
		}
		for _, v := range selected {
			if v.Price < 0 || v.Stock < 0 {
				return &ValidationError{Message: MsgVariantPriceStock}
			}
		}
		for _, v := range selected {
			if len(v.Combination) == 0 {
				return &ValidationError{Message: MsgIncompleteCombination}
			}
			for _, comb := range v.Combination {
				if strings.TrimSpace(comb.AttributeName) == "" || strings.TrimSpace(comb.Value) == "" {
					return &ValidationError{Message: MsgIncompleteCombination}
				}
			}
		}
		for _, v := range selected {
			seen := map[string]bool{}
			for _, comb := range v.Combination {
				if seen[comb.AttributeName] {
					return &ValidationError{Message: fmt.Sprintf("Biến thể có thuộc tính trùng lặp: %s", comb.AttributeName)}
				}
				seen[comb.AttributeName] = true
			}
		}
		combos := map[string]bool{}
		for _, v := range selected {
			key := CombinationKey(v.Combination)
			if combos[key] {
				return &ValidationError{Message: fmt.Sprintf("Tồn tại biến thể trùng lặp với tổ hợp: %s", strings.ReplaceAll(key, "|", ", "))}
			}
			combos[key] = true
		}
	} else {
		if draft.Defaults.Price <= 0 {
			return &ValidationError{Message: MsgDefaultPriceInvalid}
		}
		if draft.Defaults.Stock < 0 {
			return &ValidationError{Message: MsgDefaultStockInvalid}
		}
	}

	for _, spec := range draft.Specifications {
		if strings.TrimSpace(spec.Name) == "" || strings.TrimSpace(spec.Value) == "" {
			return &ValidationError{Message: MsgIncompleteSpecs}
		}
	}
	return nil
}
