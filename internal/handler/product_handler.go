package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/middleware"
	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/pipeline"
	"github.com/quadramall/seller-api/internal/service"
	"github.com/quadramall/seller-api/internal/utils"
)

// maxMultipartMemory bounds how much of the multipart body gin keeps in
// memory before spilling to temp files.
const maxMultipartMemory = 32 << 20

// ProductHandler accepts product submissions and serves products for editing.
type ProductHandler struct {
	submissions *service.SubmissionService
	catalog     *service.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(submissions *service.SubmissionService, catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{submissions: submissions, catalog: catalog}
}

// Create handles POST /v1/seller/products. The request is multipart: a
// "draft" JSON field with the form state plus the staged asset files. The
// pipeline runs in the background; the response carries the submission id
// to watch.
func (h *ProductHandler) Create(c *gin.Context) {
	h.submit(c, 0)
}

// Update handles PUT /v1/seller/products/:id with the same multipart shape
// as Create.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}
	h.submit(c, productID)
}

func (h *ProductHandler) submit(c *gin.Context, productID int64) {
	draft, err := h.parseDraft(c, productID)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", err.Error())
		return
	}

	submissionID, err := h.submissions.Start(draft)
	if err != nil {
		draft.ReleaseAll()
		if errors.Is(err, utils.ErrSubmissionBusy) {
			utils.Error(c, 409, "SUBMISSION_BUSY", "Another submission is already running")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to start submission")
		return
	}

	utils.Success(c, 202, "Submission accepted", gin.H{
		"submissionId": submissionID,
	})
}

// parseDraft decodes the draft JSON and stages every uploaded file onto its
// asset reference. File parts: "thumbnail", "images" (gallery, in order),
// "video", "variant_image_<i>" (index into the draft's variants), and
// "description_images" (in description block order).
func (h *ProductHandler) parseDraft(c *gin.Context, productID int64) (*models.ProductDraft, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, errors.New("invalid multipart body")
	}

	raw := c.Request.FormValue("draft")
	if raw == "" {
		return nil, errors.New("missing draft field")
	}

	var draft models.ProductDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, errors.New("invalid draft JSON")
	}

	draft.SellerID = middleware.SellerID(c)
	if productID > 0 {
		draft.ProductID = &productID
	}

	form := c.Request.MultipartForm

	if files := form.File["thumbnail"]; len(files) > 0 {
		if draft.Thumbnail == nil {
			draft.Thumbnail = &models.AssetReference{}
		}
		if err := stageFile(draft.Thumbnail, files[0]); err != nil {
			return nil, err
		}
	}

	for i, fh := range form.File["images"] {
		if i >= len(draft.Images) {
			return nil, errors.New("more image files than gallery entries")
		}
		if draft.Images[i] == nil {
			draft.Images[i] = &models.AssetReference{}
		}
		if err := stageFile(draft.Images[i], fh); err != nil {
			return nil, err
		}
	}

	if files := form.File["video"]; len(files) > 0 {
		if draft.Video == nil {
			draft.Video = &models.AssetReference{}
		}
		if err := stageFile(draft.Video, files[0]); err != nil {
			return nil, err
		}
	}

	for i, v := range draft.Variants {
		files := form.File["variant_image_"+strconv.Itoa(i)]
		if len(files) == 0 {
			continue
		}
		if v.Image == nil {
			v.Image = &models.AssetReference{}
		}
		if err := stageFile(v.Image, files[0]); err != nil {
			return nil, err
		}
	}

	for _, fh := range form.File["description_images"] {
		ref := &models.AssetReference{}
		if err := stageFile(ref, fh); err != nil {
			return nil, err
		}
		draft.DescriptionFiles = append(draft.DescriptionFiles, ref)
	}

	return &draft, nil
}

// stageFile reads a multipart file into the asset reference.
func stageFile(ref *models.AssetReference, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return errors.New("failed to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.New("failed to read uploaded file")
	}

	ref.Data = data
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ref.ContentType = contentType
	return nil
}

// GetProduct handles GET /v1/seller/products/:id and returns the product in
// its edit form shape, with attributes rebuilt from the stored variants.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	edit, err := h.catalog.GetProductForEdit(middleware.SellerID(c), productID)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrProductNotFound):
			utils.Error(c, 404, "NOT_FOUND", "Product not found")
		case errors.Is(err, utils.ErrNotStoreOwner):
			utils.Error(c, 403, "FORBIDDEN", "Product belongs to another seller")
		default:
			log.Error().Err(err).Int64("product_id", productID).Msg("Failed to load product for edit")
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load product")
		}
		return
	}

	utils.Success(c, 200, "Product retrieved", edit)
}

// PreviewVariants handles POST /v1/seller/variants/preview: given the current
// attributes and the previous variant list, it returns the reconciled matrix
// the form should display.
func (h *ProductHandler) PreviewVariants(c *gin.Context) {
	var req struct {
		Attributes []models.Attribute `json:"attributes"`
		Variants   []*models.Variant  `json:"variants"`
		Editing    bool               `json:"editing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	variants := pipeline.Generate(req.Attributes, req.Variants, req.Editing)
	if variants == nil {
		variants = []*models.Variant{}
	}

	// Per-value type errors, keyed "attribute:value", so the console can mark
	// offending inputs while the seller types.
	valueErrors := map[string]string{}
	for _, a := range req.Attributes {
		for _, v := range a.Values {
			if msg := pipeline.ValidateAttributeValue(v.Value, a.Type); msg != "" {
				valueErrors[a.Name+":"+v.Value] = msg
			}
		}
	}

	variantErrors := map[int64]map[string]string{}
	for _, v := range variants {
		if errs := pipeline.ValidateVariant(v); len(errs) > 0 {
			variantErrors[v.ID] = errs
		}
	}

	utils.Success(c, 200, "Variants generated", gin.H{
		"variants":      variants,
		"valueErrors":   valueErrors,
		"variantErrors": variantErrors,
	})
}
