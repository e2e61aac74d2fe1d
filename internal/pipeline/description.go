package pipeline

import (
	"encoding/json"
	"strings"
)

// DescriptionBlock is one typed block of the structured product description.
// The description travels as a JSON array of these blocks.
type DescriptionBlock struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ephemeralURL reports whether an image block still points at a client-local
// preview rather than a durable URL.
func ephemeralURL(u string) bool {
	return strings.HasPrefix(u, "blob:")
}

// ParseDescription decodes the structured description document.
func ParseDescription(description string) ([]DescriptionBlock, error) {
	var blocks []DescriptionBlock
	if err := json.Unmarshal([]byte(description), &blocks); err != nil {
		return nil, &ValidationError{Message: MsgDescriptionInvalid}
	}
	return blocks, nil
}

// CountEphemeralImages returns the number of image blocks whose URL is still
// ephemeral. The orchestrator compares this against the staged description
// file count before uploading anything.
func CountEphemeralImages(blocks []DescriptionBlock) int {
	n := 0
	for _, b := range blocks {
		if b.Type == "image" && ephemeralURL(b.URL) {
			n++
		}
	}
	return n
}

// RewriteDescription substitutes the ephemeral image block URLs with the
// durable URLs, in declaration order, and re-encodes the document. The URL
// count must exactly match the ephemeral block count; a mismatch would
// attach the wrong image to the wrong block, so it is fatal.
func RewriteDescription(description string, urls []string) (string, error) {
	blocks, err := ParseDescription(description)
	if err != nil {
		return "", err
	}

	ephemeral := CountEphemeralImages(blocks)
	if ephemeral != len(urls) {
		return "", &DescriptionConsistencyError{Blocks: ephemeral, Files: len(urls)}
	}

	idx := 0
	for i, b := range blocks {
		if b.Type == "image" && ephemeralURL(b.URL) {
			blocks[i] = DescriptionBlock{Type: "image", URL: urls[idx]}
			idx++
		}
	}

	out, err := json.Marshal(blocks)
	if err != nil {
		return "", &ValidationError{Message: MsgDescriptionInvalid}
	}
	return string(out), nil
}
