// Package files talks to the external file-storage API. The only call the
// import pipeline needs is indexing: associating an already-uploaded
// spreadsheet with the record it produced.
package files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// IndexFile issues PATCH /indexFile?fileId=<id> with the reference object
// the file should point at.
func (c *Client) IndexFile(ctx context.Context, fileID string, reference interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"referenceObj": reference})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/indexFile?fileId=%s", c.baseURL, url.QueryEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("file service returned status %d", resp.StatusCode)
	}
	return nil
}
