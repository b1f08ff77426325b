package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	apperrors "github.com/iitkqc/confession-bot-go/pkg/errors"
)

// Client talks to the Facebook Graph API for one Instagram business page.
// The access token is loaded from the sheet at run start and may be swapped
// after a refresh.
type Client struct {
	pageID      string
	appID       string
	appSecret   string
	accessToken string
	baseURL     string
	http        *http.Client
	logger      *zap.Logger
	sleep       func(time.Duration)
}

func NewClient(pageID, appID, appSecret string, logger *zap.Logger) *Client {
	return &Client{
		pageID:    pageID,
		appID:     appID,
		appSecret: appSecret,
		baseURL:   constants.APIConfig.GraphBaseURL,
		http:      &http.Client{Timeout: constants.APIConfig.GraphTimeout},
		logger:    logger,
		sleep:     time.Sleep,
	}
}

func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

func (c *Client) HasAccessToken() bool {
	return c.accessToken != ""
}

type graphResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
	Error       struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PublishPost pushes one confession to the page feed. A single image goes up
// as a plain post; multiple images become a carousel. The returned ID is the
// published media ID.
func (c *Client) PublishPost(ctx context.Context, imageURLs []string, caption string) (string, error) {
	if len(imageURLs) == 0 {
		return "", apperrors.NewValidationError("no images to publish", "imageURLs", imageURLs)
	}

	var creationID string
	var err error
	if len(imageURLs) == 1 {
		creationID, err = c.createContainer(ctx, imageURLs[0], caption, false)
	} else {
		creationID, err = c.createCarousel(ctx, imageURLs, caption)
	}
	if err != nil {
		return "", err
	}

	// The Graph API needs a moment to finish processing the container.
	c.sleep(constants.PipelineConfig.PublishDelay)

	return c.publish(ctx, creationID)
}

// createContainer creates one media container. Carousel children carry no
// caption of their own.
func (c *Client) createContainer(ctx context.Context, imageURL, caption string, carouselItem bool) (string, error) {
	params := url.Values{}
	params.Set("image_url", imageURL)
	if carouselItem {
		params.Set("is_carousel_item", "true")
	} else {
		params.Set("caption", caption)
	}

	resp, err := c.post(ctx, c.pageID+"/media", params)
	if err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	c.logger.Debug("Media container created", zap.String("id", resp.ID))
	return resp.ID, nil
}

func (c *Client) createCarousel(ctx context.Context, imageURLs []string, caption string) (string, error) {
	children := make([]string, 0, len(imageURLs))
	for _, imageURL := range imageURLs {
		childID, err := c.createContainer(ctx, imageURL, "", true)
		if err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	params := url.Values{}
	params.Set("media_type", "CAROUSEL")
	params.Set("children", strings.Join(children, ","))
	params.Set("caption", caption)

	resp, err := c.post(ctx, c.pageID+"/media", params)
	if err != nil {
		return "", fmt.Errorf("create carousel container: %w", err)
	}
	c.logger.Info("Carousel container created",
		zap.String("id", resp.ID),
		zap.Int("slides", len(children)),
	)
	return resp.ID, nil
}

func (c *Client) publish(ctx context.Context, creationID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", creationID)

	resp, err := c.post(ctx, c.pageID+"/media_publish", params)
	if err != nil {
		return "", fmt.Errorf("publish container %s: %w", creationID, err)
	}
	c.logger.Info("Published post", zap.String("media_id", resp.ID))
	return resp.ID, nil
}

// RefreshAccessToken exchanges the current token for a fresh long-lived one.
// Long-lived tokens last about 60 days; the pipeline refreshes monthly.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	if c.appID == "" || c.appSecret == "" {
		return "", apperrors.NewValidationError("app credentials required for token refresh", "appID", c.appID)
	}
	if !c.HasAccessToken() {
		return "", apperrors.NewValidationError("no current token to exchange", "accessToken", "")
	}

	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", c.appID)
	params.Set("client_secret", c.appSecret)
	params.Set("fb_exchange_token", c.accessToken)

	resp, err := c.get(ctx, "oauth/access_token", params)
	if err != nil {
		return "", fmt.Errorf("exchange access token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", apperrors.NewAPIError("token exchange returned no token", 200, nil)
	}

	c.accessToken = resp.AccessToken
	c.logger.Info("Instagram access token refreshed")
	return resp.AccessToken, nil
}

func (c *Client) post(ctx context.Context, path string, params url.Values) (*graphResponse, error) {
	params.Set("access_token", c.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*graphResponse, error) {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewServiceError("graph API request failed", "instagram", req.URL.Path, err)
	}
	defer httpResp.Body.Close()

	var resp graphResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode graph response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, apperrors.NewAPIError(
			fmt.Sprintf("graph API error: %s", resp.Error.Message),
			httpResp.StatusCode,
			map[string]any{"code": resp.Error.Code, "path": req.URL.Path},
		)
	}
	return &resp, nil
}
