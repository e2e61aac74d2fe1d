package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDescription = `[
	{"type":"text","content":"Mô tả sản phẩm"},
	{"type":"image","url":"blob:http://localhost/a1"},
	{"type":"image","url":"https://cdn.example.com/kept.jpg"},
	{"type":"image","url":"blob:http://localhost/a2"}
]`

func TestParseDescriptionInvalidJSON(t *testing.T) {
	_, err := ParseDescription("not json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgDescriptionInvalid, verr.Message)
}

func TestCountEphemeralImages(t *testing.T) {
	blocks, err := ParseDescription(sampleDescription)
	require.NoError(t, err)
	assert.Equal(t, 2, CountEphemeralImages(blocks))
}

func TestRewriteDescriptionSubstitutesInOrder(t *testing.T) {
	out, err := RewriteDescription(sampleDescription, []string{
		"https://cdn.example.com/u1.jpg",
		"https://cdn.example.com/u2.jpg",
	})
	require.NoError(t, err)

	var blocks []DescriptionBlock
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 4)

	assert.Equal(t, "text", blocks[0].Type)
	assert.Equal(t, "https://cdn.example.com/u1.jpg", blocks[1].URL)
	assert.Equal(t, "https://cdn.example.com/kept.jpg", blocks[2].URL, "durable URLs are untouched")
	assert.Equal(t, "https://cdn.example.com/u2.jpg", blocks[3].URL)
}

func TestRewriteDescriptionCountMismatch(t *testing.T) {
	_, err := RewriteDescription(sampleDescription, []string{"https://cdn.example.com/only-one.jpg"})
	var cerr *DescriptionConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 2, cerr.Blocks)
	assert.Equal(t, 1, cerr.Files)
	assert.Equal(t, MsgDescriptionMismatch, cerr.Error())
}

func TestRewriteDescriptionNoEphemeralBlocks(t *testing.T) {
	desc := `[{"type":"text","content":"chỉ có chữ"}]`
	out, err := RewriteDescription(desc, nil)
	require.NoError(t, err)

	var blocks []DescriptionBlock
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 1)
	assert.Equal(t, "chỉ có chữ", blocks[0].Content)
}
