package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadramall/seller-api/internal/models"
)

type fakeUploader struct {
	images int
	videos int
	fail   bool
}

func (f *fakeUploader) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("connection reset")
	}
	f.images++
	return fmt.Sprintf("https://cdn.example.com/img-%d.jpg", f.images), nil
}

func (f *fakeUploader) UploadVideo(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("connection reset")
	}
	f.videos++
	return fmt.Sprintf("https://cdn.example.com/vid-%d.mp4", f.videos), nil
}

type fakePersister struct {
	saved   *models.ProductPayload
	calls   int
	failErr error
}

func (f *fakePersister) Save(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.saved = payload
	return &models.Product{ID: 42, Name: payload.Name, Slug: payload.Slug}, nil
}

func stagedAsset() *models.AssetReference {
	return &models.AssetReference{Data: []byte("bytes"), ContentType: "image/jpeg"}
}

func validDraft() *models.ProductDraft {
	return &models.ProductDraft{
		SellerID:    7,
		StoreID:     3,
		Name:        "Áo thun nam",
		ItemType:    &models.ItemType{ID: 1, Name: "Thời trang"},
		Description: `[{"type":"text","content":"mô tả"}]`,
		Thumbnail:   stagedAsset(),
		Images:      []*models.AssetReference{stagedAsset(), stagedAsset(), stagedAsset()},
		Defaults:    models.DefaultValues{Price: 10000, Stock: 5},
	}
}

func collectStages(t *testing.T) (ProgressSink, *[]models.ProgressState) {
	t.Helper()
	var states []models.ProgressState
	return func(s models.ProgressState) { states = append(states, s) }, &states
}

func TestSubmitHappyPath(t *testing.T) {
	up := &fakeUploader{}
	ps := &fakePersister{}
	o := NewOrchestrator(up, ps)
	sink, states := collectStages(t)

	product, err := o.Submit(context.Background(), validDraft(), sink)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(42), product.ID)

	// thumbnail + 3 gallery images
	assert.Equal(t, 4, up.images)
	assert.Equal(t, 1, ps.calls)

	last := (*states)[len(*states)-1]
	assert.Equal(t, models.StageCompleted, last.Stage)
	assert.Equal(t, 100.0, last.Percentage)
	assert.Equal(t, "Sản phẩm đã được tạo thành công!", last.Message)

	first := (*states)[0]
	assert.Equal(t, models.StageValidating, first.Stage)
	assert.Equal(t, 0.0, first.Percentage)
}

func TestSubmitAssemblesImplicitVariant(t *testing.T) {
	ps := &fakePersister{}
	o := NewOrchestrator(&fakeUploader{}, ps)

	_, err := o.Submit(context.Background(), validDraft(), nil)
	require.NoError(t, err)

	require.Len(t, ps.saved.Variants, 1)
	v := ps.saved.Variants[0]
	assert.Equal(t, "PNEW-DEFAULT", v.SKU)
	assert.Equal(t, int64(10000), v.Price)
	assert.Equal(t, 5, v.StockQuantity)
	assert.True(t, v.IsActive)
	assert.Empty(t, v.ProductDetails)
	assert.Equal(t, "ao-thun-nam", ps.saved.Slug)
}

func TestSubmitTooFewImagesFailsBeforeNetwork(t *testing.T) {
	up := &fakeUploader{}
	o := NewOrchestrator(up, &fakePersister{})
	sink, states := collectStages(t)

	draft := validDraft()
	draft.Images = draft.Images[:2]

	_, err := o.Submit(context.Background(), draft, sink)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgTooFewImages, verr.Message)
	assert.Zero(t, up.images, "validation failures must not trigger uploads")

	last := (*states)[len(*states)-1]
	assert.Equal(t, models.StageError, last.Stage)
	assert.Equal(t, MsgTooFewImages, last.Error)
}

func TestSubmitNoSelectedVariants(t *testing.T) {
	o := NewOrchestrator(&fakeUploader{}, &fakePersister{})

	draft := validDraft()
	draft.Attributes = []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	draft.Variants = Generate(draft.Attributes, nil, false)
	for _, v := range draft.Variants {
		v.IsSelected = false
	}

	_, err := o.Submit(context.Background(), draft, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgNoVariantSelected, verr.Message)
}

func TestSubmitDuplicateCombinationOrderIndependent(t *testing.T) {
	o := NewOrchestrator(&fakeUploader{}, &fakePersister{})

	draft := validDraft()
	draft.Attributes = []models.Attribute{
		attr("Màu sắc", models.AttributeTypeString, "Đỏ"),
		attr("Kích cỡ", models.AttributeTypeAll, "M"),
	}
	draft.Variants = []*models.Variant{
		{ID: 1, IsSelected: true, Price: 1000, Stock: 1, Combination: []models.AttributeValue{
			{AttributeName: "Màu sắc", Value: "Đỏ"},
			{AttributeName: "Kích cỡ", Value: "M"},
		}},
		{ID: 2, IsSelected: true, Price: 2000, Stock: 2, Combination: []models.AttributeValue{
			{AttributeName: "Kích cỡ", Value: "M"},
			{AttributeName: "Màu sắc", Value: "Đỏ"},
		}},
	}

	_, err := o.Submit(context.Background(), draft, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Tồn tại biến thể trùng lặp")
}

func TestSubmitWithVideoProgressMonotonic(t *testing.T) {
	up := &fakeUploader{}
	o := NewOrchestrator(up, &fakePersister{})
	sink, states := collectStages(t)

	draft := validDraft()
	draft.Video = &models.AssetReference{Data: []byte("mp4 bytes"), ContentType: "video/mp4"}

	_, err := o.Submit(context.Background(), draft, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, up.videos)

	videoSeen := false
	for i, s := range *states {
		if s.Stage == models.StageUploadingVideo {
			videoSeen = true
		}
		if i == 0 {
			continue
		}
		assert.GreaterOrEqual(t, s.Percentage, (*states)[i-1].Percentage,
			"percentage must never drop: %s at %.1f after %s at %.1f",
			s.Stage, s.Percentage, (*states)[i-1].Stage, (*states)[i-1].Percentage)
	}
	assert.True(t, videoSeen)
}

func TestSubmitEphemeralBlocksWithoutFilesAborts(t *testing.T) {
	up := &fakeUploader{}
	ps := &fakePersister{}
	o := NewOrchestrator(up, ps)

	draft := validDraft()
	draft.Description = `[
		{"type":"image","url":"blob:http://localhost/a"},
		{"type":"image","url":"blob:http://localhost/b"}
	]`

	_, err := o.Submit(context.Background(), draft, nil)
	var cerr *DescriptionConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 2, cerr.Blocks)
	assert.Equal(t, 0, cerr.Files)
	assert.Zero(t, up.images, "ephemeral blocks without files must abort pre-network")
	assert.Zero(t, ps.calls, "ephemeral URLs must never reach the persister")
}

func TestSubmitDescriptionMismatchAbortsBeforeUploads(t *testing.T) {
	up := &fakeUploader{}
	ps := &fakePersister{}
	o := NewOrchestrator(up, ps)

	draft := validDraft()
	draft.Description = `[
		{"type":"image","url":"blob:http://localhost/a"},
		{"type":"image","url":"blob:http://localhost/b"}
	]`
	draft.DescriptionFiles = []*models.AssetReference{stagedAsset()}

	_, err := o.Submit(context.Background(), draft, nil)
	var cerr *DescriptionConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Zero(t, up.images, "no upload may happen before the count check")
	assert.Zero(t, ps.calls, "the product must not be persisted")
}

func TestSubmitDescriptionRewrite(t *testing.T) {
	ps := &fakePersister{}
	o := NewOrchestrator(&fakeUploader{}, ps)

	draft := validDraft()
	draft.Description = `[{"type":"text","content":"x"},{"type":"image","url":"blob:http://localhost/a"}]`
	draft.DescriptionFiles = []*models.AssetReference{stagedAsset()}

	_, err := o.Submit(context.Background(), draft, nil)
	require.NoError(t, err)
	assert.NotContains(t, ps.saved.Description, "blob:")
	assert.Contains(t, ps.saved.Description, "https://cdn.example.com/")
}

func TestSubmitUploadFailureAborts(t *testing.T) {
	up := &fakeUploader{fail: true}
	ps := &fakePersister{}
	o := NewOrchestrator(up, ps)
	sink, states := collectStages(t)

	_, err := o.Submit(context.Background(), validDraft(), sink)
	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Zero(t, ps.calls)

	last := (*states)[len(*states)-1]
	assert.Equal(t, models.StageError, last.Stage)
}

func TestSubmitConflictMessage(t *testing.T) {
	ps := &fakePersister{failErr: &PersistenceError{Status: 409}}
	o := NewOrchestrator(&fakeUploader{}, ps)
	sink, states := collectStages(t)

	_, err := o.Submit(context.Background(), validDraft(), sink)
	require.Error(t, err)

	last := (*states)[len(*states)-1]
	assert.Equal(t, MsgSaveConflict, last.Error)
}

func TestSubmitForbiddenAndBadRequestMessages(t *testing.T) {
	cases := []struct {
		status  int
		message string
		want    string
	}{
		{403, "", MsgSaveForbidden},
		{400, "Dữ liệu biến thể không hợp lệ", "Dữ liệu biến thể không hợp lệ"},
		{400, "", MsgSaveBadRequest},
		{500, "boom", MsgSaveGeneric},
	}
	for _, tc := range cases {
		ps := &fakePersister{failErr: &PersistenceError{Status: tc.status, Message: tc.message}}
		o := NewOrchestrator(&fakeUploader{}, ps)
		sink, states := collectStages(t)

		_, err := o.Submit(context.Background(), validDraft(), sink)
		require.Error(t, err)
		last := (*states)[len(*states)-1]
		assert.Equal(t, tc.want, last.Error, "status %d", tc.status)
	}
}

func TestSubmitReleasesUploadedAssets(t *testing.T) {
	o := NewOrchestrator(&fakeUploader{}, &fakePersister{})

	draft := validDraft()
	thumb := draft.Thumbnail
	_, err := o.Submit(context.Background(), draft, nil)
	require.NoError(t, err)

	assert.False(t, thumb.Pending(), "staged bytes are released after a successful upload")
	assert.NotEmpty(t, thumb.RemoteURL)
	for _, img := range draft.Images {
		assert.False(t, img.Pending())
	}
}

func TestSubmitEditingKeepsExistingImageIDs(t *testing.T) {
	ps := &fakePersister{}
	o := NewOrchestrator(&fakeUploader{}, ps)

	draft := validDraft()
	productID := int64(42)
	draft.ProductID = &productID

	// First image already persisted, second freshly staged, third persisted.
	keptID := int64(11)
	draft.Images = []*models.AssetReference{
		{ID: &keptID, RemoteURL: "https://cdn.example.com/old-1.jpg"},
		stagedAsset(),
		{ID: ptrInt64(12), RemoteURL: "https://cdn.example.com/old-2.jpg"},
	}
	draft.Thumbnail = &models.AssetReference{RemoteURL: "https://cdn.example.com/old-thumb.jpg"}

	_, err := o.Submit(context.Background(), draft, nil)
	require.NoError(t, err)

	require.Len(t, ps.saved.Images, 3)
	require.NotNil(t, ps.saved.Images[0].ID)
	assert.Equal(t, keptID, *ps.saved.Images[0].ID)
	assert.Nil(t, ps.saved.Images[1].ID, "a freshly uploaded image carries no stale id")
	assert.Equal(t, "https://cdn.example.com/old-1.jpg", ps.saved.Images[0].ImageURL)
}

func TestSubmitEditingSuccessMessage(t *testing.T) {
	o := NewOrchestrator(&fakeUploader{}, &fakePersister{})
	sink, states := collectStages(t)

	draft := validDraft()
	productID := int64(42)
	draft.ProductID = &productID

	_, err := o.Submit(context.Background(), draft, sink)
	require.NoError(t, err)
	last := (*states)[len(*states)-1]
	assert.Equal(t, "Sản phẩm đã được cập nhật thành công!", last.Message)
}

func TestSubmitEditingFreshVariantCarriesNoID(t *testing.T) {
	ps := &fakePersister{}
	o := NewOrchestrator(&fakeUploader{}, ps)

	draft := validDraft()
	productID := int64(42)
	draft.ProductID = &productID
	draft.Attributes = []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}

	persisted := &models.Variant{
		ID: 7, IsSelected: true, Price: 1000, Stock: 1, IsActive: true,
		Combination: []models.AttributeValue{{AttributeName: "Kích cỡ", Value: "S"}},
	}
	draft.Variants = Generate(draft.Attributes, []*models.Variant{persisted}, true)
	require.Len(t, draft.Variants, 2)
	fresh := draft.Variants[1]
	assert.Negative(t, fresh.ID, "a combination new to the edit has a placeholder id")
	fresh.IsSelected = true
	fresh.Price = 2000
	fresh.Stock = 2

	_, err := o.Submit(context.Background(), draft, nil)
	require.NoError(t, err)

	require.Len(t, ps.saved.Variants, 2)
	require.NotNil(t, ps.saved.Variants[0].ID)
	assert.Equal(t, int64(7), *ps.saved.Variants[0].ID)
	assert.Nil(t, ps.saved.Variants[1].ID, "placeholder ids must not be sent as persisted variant ids")
}

func TestSubmitVariantSKUDefaults(t *testing.T) {
	ps := &fakePersister{}
	o := NewOrchestrator(&fakeUploader{}, ps)

	draft := validDraft()
	draft.Attributes = []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	draft.Variants = Generate(draft.Attributes, nil, false)
	for _, v := range draft.Variants {
		v.Price = 1000
		v.Stock = 1
	}
	draft.Variants[1].SKU = "CUSTOM-M"

	_, err := o.Submit(context.Background(), draft, nil)
	require.NoError(t, err)

	require.Len(t, ps.saved.Variants, 2)
	assert.Equal(t, "PNEW-V1", ps.saved.Variants[0].SKU)
	assert.Equal(t, "CUSTOM-M", ps.saved.Variants[1].SKU)
	require.Len(t, ps.saved.Variants[0].ProductDetails, 1)
	assert.Equal(t, "ALL", ps.saved.Variants[0].ProductDetails[0].AttributeValue.TypesValue)
}

func ptrInt64(v int64) *int64 { return &v }
