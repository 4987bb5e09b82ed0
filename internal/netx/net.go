// Package netx holds small HTTP helpers shared by the command-line tools.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// UploadError is returned when the object store answers a presigned PUT with
// anything other than 200.
type UploadError struct {
	Status string
	Code   int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, e.Body)
}

// UploadToPresignedURL PUTs body to a presigned object-store URL. A nil
// client means http.DefaultClient. size is sent as Content-Length when >= 0.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url string, body io.Reader, size int64, contentType string) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UploadError{Status: resp.Status, Code: resp.StatusCode, Body: string(b)}
	}
	return nil
}
