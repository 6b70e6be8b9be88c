package identityapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"treats/domain/entities"

	"github.com/go-resty/resty/v2"
)

// Client fetches display metadata from the identity service's internal API.
// It implements interfaces.ProfileDirectory.
type Client struct {
	http *resty.Client
}

type profileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// NewClient creates an identity service client
func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2)

	return &Client{http: httpClient}
}

// GetProfiles resolves display metadata for the given account ids. Unknown
// ids are absent from the result; callers fall back to the raw id.
func (c *Client) GetProfiles(ctx context.Context, accountIDs []string) (map[string]entities.Profile, error) {
	if len(accountIDs) == 0 {
		return map[string]entities.Profile{}, nil
	}

	var profiles []profileResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&profiles).
		SetQueryParam("ids", strings.Join(accountIDs, ",")).
		Get("/internal/profiles")
	if err != nil {
		return nil, fmt.Errorf("identity service request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode())
	}

	result := make(map[string]entities.Profile, len(profiles))
	for _, p := range profiles {
		result[p.ID] = entities.Profile{
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
		}
	}

	return result, nil
}
