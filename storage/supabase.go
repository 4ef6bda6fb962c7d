package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"restaurant-platform-api/config"
)

// SupabaseStorage uploads objects through the Supabase Storage REST API
// using the service key. Objects land in a single public bucket.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

// NewSupabase returns nil when the Supabase env vars are not configured;
// upload endpoints then answer 500 until they are.
func NewSupabase(cfg config.AppConfig) *SupabaseStorage {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" || cfg.SupabaseBucket == "" {
		return nil
	}
	return &SupabaseStorage{
		baseURL:    cfg.SupabaseURL,
		serviceKey: cfg.SupabaseServiceKey,
		bucket:     cfg.SupabaseBucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload puts the object into the bucket and returns its public URL.
// Uploads never overwrite: filenames are random on the caller's side.
func (s *SupabaseStorage) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "31536000")
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("supabase upload failed: %s: %s", resp.Status, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, filename), nil
}
