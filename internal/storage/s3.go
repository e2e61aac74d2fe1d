package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/config"
)

// S3Client uploads product assets to S3 using AWS Signature V4. One PUT per
// asset, no multipart/chunked uploads.
type S3Client struct {
	bucket          string
	region          string
	endpoint        string
	accessKeyID     string
	secretAccessKey string
	maxImageBytes   int64
	maxVideoBytes   int64
	httpClient      *http.Client
}

// NewS3Client creates a new S3 asset client.
func NewS3Client(cfg *config.S3Config, limits *config.UploadConfig) (*S3Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}
	c := &S3Client{
		bucket:          cfg.Bucket,
		region:          cfg.Region,
		endpoint:        strings.TrimSuffix(cfg.Endpoint, "/"),
		accessKeyID:     cfg.AccessKeyID,
		secretAccessKey: cfg.SecretAccessKey,
		maxImageBytes:   25 << 20,
		maxVideoBytes:   100 << 20,
		httpClient:      &http.Client{Timeout: 120 * time.Second},
	}
	if limits != nil {
		if limits.MaxImageBytes > 0 {
			c.maxImageBytes = limits.MaxImageBytes
		}
		if limits.MaxVideoBytes > 0 {
			c.maxVideoBytes = limits.MaxVideoBytes
		}
	}
	return c, nil
}

// UploadImage stores one image and returns its durable URL.
func (s *S3Client) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	if int64(len(data)) > s.maxImageBytes {
		return "", fmt.Errorf("image exceeds maximum size of %d bytes", s.maxImageBytes)
	}
	key := fmt.Sprintf("products/images/%s%s", uuid.New().String(), extensionFor(contentType))
	return s.putObject(ctx, key, data, contentType)
}

// UploadVideo stores one video and returns its durable URL.
func (s *S3Client) UploadVideo(ctx context.Context, data []byte, contentType string) (string, error) {
	if int64(len(data)) > s.maxVideoBytes {
		return "", fmt.Errorf("video exceeds maximum size of %d bytes", s.maxVideoBytes)
	}
	key := fmt.Sprintf("products/videos/%s%s", uuid.New().String(), extensionFor(contentType))
	return s.putObject(ctx, key, data, contentType)
}

// objectURL returns the durable URL for a stored object. With a custom
// endpoint the client uses path-style addressing; otherwise virtual-host
// style against the AWS regional endpoint.
func (s *S3Client) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// putObject uploads the object with a signed PUT request.
func (s *S3Client) putObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	target := s.objectURL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	now := time.Now().UTC()
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")
	payloadHash := sha256Hex(data)

	host := req.URL.Host
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(data)))
	req.Header.Set("Host", host)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	authorization := s.signRequest(req, payloadHash, amzDate, dateStamp)
	req.Header.Set("Authorization", authorization)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload to S3")
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload rejected with status %d", resp.StatusCode)
	}

	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Uploaded asset to S3")
	return target, nil
}

// signRequest creates the AWS Signature V4 authorization header.
func (s *S3Client) signRequest(req *http.Request, payloadHash, amzDate, dateStamp string) string {
	service := "s3"

	canonicalURI := req.URL.EscapedPath()
	if canonicalURI == "" {
		canonicalURI = "/"
	}
	canonicalQueryString := ""

	signedHeaders := []string{"content-type", "host", "x-amz-content-sha256", "x-amz-date"}
	sort.Strings(signedHeaders)

	var canonicalHeaders strings.Builder
	for _, h := range signedHeaders {
		canonicalHeaders.WriteString(strings.ToLower(h))
		canonicalHeaders.WriteString(":")
		canonicalHeaders.WriteString(strings.TrimSpace(req.Header.Get(h)))
		canonicalHeaders.WriteString("\n")
	}

	signedHeadersStr := strings.Join(signedHeaders, ";")

	canonicalRequest := fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		req.Method,
		canonicalURI,
		canonicalQueryString,
		canonicalHeaders.String(),
		signedHeadersStr,
		payloadHash,
	)

	algorithm := "AWS4-HMAC-SHA256"
	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request", dateStamp, s.region, service)
	stringToSign := fmt.Sprintf("%s\n%s\n%s\n%s",
		algorithm,
		amzDate,
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	)

	kDate := hmacSHA256([]byte("AWS4"+s.secretAccessKey), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(s.region))
	kService := hmacSHA256(kRegion, []byte(service))
	kSigning := hmacSHA256(kService, []byte("aws4_request"))

	signature := hex.EncodeToString(hmacSHA256(kSigning, []byte(stringToSign)))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm,
		s.accessKeyID,
		credentialScope,
		signedHeadersStr,
		signature,
	)
}

// extensionFor maps a content type to a file extension for the object key.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		if ext := extFromMime(contentType); ext != "" {
			return ext
		}
		return ""
	}
}

func extFromMime(contentType string) string {
	if i := strings.Index(contentType, "/"); i >= 0 && i+1 < len(contentType) {
		sub := contentType[i+1:]
		if j := strings.Index(sub, ";"); j >= 0 {
			sub = sub[:j]
		}
		if sub != "" && !strings.ContainsAny(sub, "+.") {
			return "." + sub
		}
	}
	return ""
}

// sha256Hex computes SHA256 hash and returns hex string.
func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// hmacSHA256 computes HMAC-SHA256.
func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
