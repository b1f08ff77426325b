package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	apperrors "github.com/iitkqc/confession-bot-go/pkg/errors"
)

// Uploader pushes rendered slides to Cloudinary so the Graph API can fetch
// them by public URL. Assets are throwaway; Purge wipes the account after a
// run.
type Uploader struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

func NewUploader(cloudName, apiKey, apiSecret string, logger *zap.Logger) *Uploader {
	return &Uploader{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   constants.APIConfig.CloudinaryBaseURL,
		http:      &http.Client{Timeout: constants.APIConfig.CloudinaryTimeout},
		logger:    logger,
		now:       time.Now,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload performs a signed upload of one local image and returns its public
// HTTPS URL. Network errors and 5xx responses are retried; client errors are
// not.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewServiceError("open artifact for upload", "cloudinary", "upload", err)
	}
	name := filepath.Base(path)

	var lastErr error
	for attempt := 1; attempt <= constants.APIConfig.MaxRetryAttempts; attempt++ {
		url, retryable, err := u.uploadOnce(ctx, name, data)
		if err == nil {
			return url, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return "", err
		}
		u.logger.Warn("Upload attempt failed",
			zap.String("file", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return "", lastErr
}

func (u *Uploader) uploadOnce(ctx context.Context, name string, data []byte) (string, bool, error) {
	timestamp := strconv.FormatInt(u.now().Unix(), 10)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", false, err
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return "", false, err
	}
	_ = writer.WriteField("api_key", u.apiKey)
	_ = writer.WriteField("timestamp", timestamp)
	_ = writer.WriteField("signature", u.sign("timestamp="+timestamp))
	if err := writer.Close(); err != nil {
		return "", false, err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", true, apperrors.NewServiceError("upload to cloudinary", "cloudinary", "upload", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("decode cloudinary response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode >= http.StatusInternalServerError, apperrors.NewAPIError(
			fmt.Sprintf("cloudinary upload failed: %s", result.Error.Message),
			resp.StatusCode,
			map[string]any{"file": name},
		)
	}

	u.logger.Info("Uploaded slide",
		zap.String("file", name),
		zap.String("public_id", result.PublicID),
	)
	return result.SecureURL, true, nil
}

type resourceList struct {
	Resources []struct {
		PublicID string `json:"public_id"`
	} `json:"resources"`
	NextCursor string `json:"next_cursor"`
}

// Purge deletes every uploaded image in the account. Once the post is
// published Instagram has its own copy, so nothing here needs to survive.
func (u *Uploader) Purge(ctx context.Context) error {
	cursor := ""
	total := 0

	for {
		publicIDs, next, err := u.listImages(ctx, cursor)
		if err != nil {
			return err
		}
		if len(publicIDs) == 0 {
			break
		}

		if err := u.deleteImages(ctx, publicIDs); err != nil {
			return err
		}
		total += len(publicIDs)

		if next == "" {
			break
		}
		cursor = next
	}

	u.logger.Info("Purged cloudinary assets", zap.Int("count", total))
	return nil
}

func (u *Uploader) listImages(ctx context.Context, cursor string) ([]string, string, error) {
	endpoint := fmt.Sprintf("%s/%s/resources/image/upload?max_results=500", u.baseURL, u.cloudName)
	if cursor != "" {
		endpoint += "&next_cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	req.SetBasicAuth(u.apiKey, u.apiSecret)

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, "", apperrors.NewServiceError("list cloudinary assets", "cloudinary", "list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", apperrors.NewAPIError("cloudinary list failed", resp.StatusCode, nil)
	}

	var list resourceList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, "", fmt.Errorf("decode cloudinary asset list: %w", err)
	}

	ids := make([]string, 0, len(list.Resources))
	for _, res := range list.Resources {
		ids = append(ids, res.PublicID)
	}
	return ids, list.NextCursor, nil
}

func (u *Uploader) deleteImages(ctx context.Context, publicIDs []string) error {
	form := url.Values{}
	for _, id := range publicIDs {
		form.Add("public_ids[]", id)
	}
	form.Set("invalidate", "true")

	endpoint := fmt.Sprintf("%s/%s/resources/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(u.apiKey, u.apiSecret)

	resp, err := u.http.Do(req)
	if err != nil {
		return apperrors.NewServiceError("delete cloudinary assets", "cloudinary", "delete", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewAPIError("cloudinary delete failed", resp.StatusCode, map[string]any{
			"count": len(publicIDs),
		})
	}
	return nil
}

// sign computes the signed-upload signature: SHA-1 over the sorted parameter
// string with the API secret appended.
func (u *Uploader) sign(params string) string {
	sum := sha1.Sum([]byte(params + u.apiSecret))
	return hex.EncodeToString(sum[:])
}
