package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadramall/seller-api/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*S3Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewS3Client(&config.S3Config{
		Region:          "ap-southeast-1",
		Bucket:          "quadramall-assets",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	}, &config.UploadConfig{MaxImageBytes: 1 << 20, MaxVideoBytes: 2 << 20})
	require.NoError(t, err)
	return client, srv
}

func TestUploadImage(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	client, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	url, err := client.UploadImage(context.Background(), []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, srv.URL+"/quadramall-assets/products/images/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.True(t, strings.HasPrefix(gotPath, "/quadramall-assets/products/images/"))
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, []byte("jpeg bytes"), gotBody)

	assert.Contains(t, gotAuth, "AWS4-HMAC-SHA256 Credential=AKIATEST/")
	assert.Contains(t, gotAuth, "/ap-southeast-1/s3/aws4_request")
	assert.Contains(t, gotAuth, "SignedHeaders=content-type;host;x-amz-content-sha256;x-amz-date")
	assert.Contains(t, gotAuth, "Signature=")
}

func TestUploadVideoKey(t *testing.T) {
	client, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	url, err := client.UploadVideo(context.Background(), []byte("mp4 bytes"), "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/quadramall-assets/products/videos/"))
	assert.True(t, strings.HasSuffix(url, ".mp4"))
}

func TestUploadImageTooLarge(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("oversized upload must not reach the server")
	})

	_, err := client.UploadImage(context.Background(), make([]byte, 2<<20), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum size")
}

func TestUploadRejectedStatus(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.UploadImage(context.Background(), []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestObjectURLVirtualHostStyle(t *testing.T) {
	client, err := NewS3Client(&config.S3Config{
		Region: "ap-southeast-1",
		Bucket: "quadramall-assets",
	}, nil)
	require.NoError(t, err)

	url := client.objectURL("products/images/abc.jpg")
	assert.Equal(t, "https://quadramall-assets.s3.ap-southeast-1.amazonaws.com/products/images/abc.jpg", url)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".mp4", extensionFor("video/mp4"))
	assert.Equal(t, ".avif", extensionFor("image/avif"))
	assert.Equal(t, "", extensionFor("image/svg+xml"))
	assert.Equal(t, "", extensionFor(""))
}
