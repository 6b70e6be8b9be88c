package photoapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client resolves subject ownership against the photo service's internal API.
// It implements interfaces.SubjectResolver.
type Client struct {
	http *resty.Client
}

// photoResponse is the subset of the photo document this service reads
type photoResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// NewClient creates a photo service client
func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2)

	return &Client{http: httpClient}
}

// OwnerOf returns the owning account of a subject, or "" when the subject
// does not exist. Lookups happen before the transfer transaction opens, so
// latency here never extends a row lock.
func (c *Client) OwnerOf(ctx context.Context, subjectID string) (string, error) {
	var photo photoResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&photo).
		SetPathParam("id", subjectID).
		Get("/internal/photos/{id}")
	if err != nil {
		return "", fmt.Errorf("photo service request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return photo.OwnerID, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("photo service returned status %d", resp.StatusCode())
	}
}
