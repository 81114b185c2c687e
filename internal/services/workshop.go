package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// workshopDetailsPath is Steam's batched published-file lookup.
	workshopDetailsPath = "/ISteamRemoteStorage/GetPublishedFileDetails/v1/"

	// workshopMaxBatch is the provider's documented per-request ID limit.
	workshopMaxBatch = 100

	workshopRequestTimeout = 30 * time.Second
)

// WorkshopDetails is one mod's catalog metadata.
type WorkshopDetails struct {
	ID            string
	Title         string
	Description   string
	Creator       string
	PreviewURL    string
	FileSize      int64
	Subscriptions int64
	Rating        float64
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WorkshopClient fetches mod metadata from the Workshop catalog in batches,
// pacing successive requests to stay inside the provider's fair-use
// expectations. Lookup failures degrade to partial results, never errors.
type WorkshopClient struct {
	baseURL   string
	apiKey    string
	batchSize int
	client    *http.Client
	limiter   *rate.Limiter
}

func NewWorkshopClient(baseURL, apiKey string, batchSize int, batchDelay time.Duration) *WorkshopClient {
	if batchSize < 1 || batchSize > workshopMaxBatch {
		batchSize = workshopMaxBatch
	}
	if batchDelay <= 0 {
		batchDelay = time.Second
	}
	return &WorkshopClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		batchSize: batchSize,
		client:    &http.Client{Timeout: workshopRequestTimeout},
		limiter:   rate.NewLimiter(rate.Every(batchDelay), 1),
	}
}

// FetchDetails looks up metadata for the given IDs. The returned map only
// contains entries the catalog knows and allows access to; everything else
// is simply absent. Batch-level failures are logged and skipped so one bad
// request cannot empty the whole result.
func (c *WorkshopClient) FetchDetails(ctx context.Context, ids []string) map[string]WorkshopDetails {
	details := make(map[string]WorkshopDetails, len(ids))

	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			log.Printf("Workshop: fetch aborted: %v", err)
			return details
		}

		batchDetails, err := c.fetchBatch(ctx, batch)
		if err != nil {
			log.Printf("Workshop: batch of %d failed, continuing: %v", len(batch), err)
			continue
		}
		for id, d := range batchDetails {
			details[id] = d
		}
	}

	return details
}

type workshopResponse struct {
	Response struct {
		Result               int                   `json:"result"`
		ResultCount          int                   `json:"resultcount"`
		PublishedFileDetails []workshopFileDetails `json:"publishedfiledetails"`
	} `json:"response"`
}

type workshopFileDetails struct {
	PublishedFileID string `json:"publishedfileid"`
	Result          int    `json:"result"` // 1 = OK; anything else means missing or access denied
	Title           string `json:"title"`
	Description     string `json:"description"`
	Creator         string `json:"creator"`
	PreviewURL      string `json:"preview_url"`
	FileSize        int64  `json:"file_size,string"`
	Subscriptions   int64  `json:"subscriptions"`
	TimeCreated     int64  `json:"time_created"`
	TimeUpdated     int64  `json:"time_updated"`
	Tags            []struct {
		Tag string `json:"tag"`
	} `json:"tags"`
	VoteData *struct {
		Score float64 `json:"score"`
	} `json:"vote_data"`
}

func (c *WorkshopClient) fetchBatch(ctx context.Context, ids []string) (map[string]WorkshopDetails, error) {
	form := url.Values{}
	form.Set("itemcount", strconv.Itoa(len(ids)))
	for i, id := range ids {
		form.Set(fmt.Sprintf("publishedfileids[%d]", i), id)
	}
	if c.apiKey != "" {
		form.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+workshopDetailsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build workshop request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workshop request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read workshop response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workshop returned status %d: %s", resp.StatusCode, truncateText(string(body), 200))
	}

	var parsed workshopResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse workshop response: %w", err)
	}

	details := make(map[string]WorkshopDetails, len(parsed.Response.PublishedFileDetails))
	for _, d := range parsed.Response.PublishedFileDetails {
		if d.Result != 1 {
			// Deleted, hidden, or region-locked items come back with a
			// non-OK per-item result; they are not an error for the batch.
			continue
		}
		tags := make([]string, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, t.Tag)
		}
		detail := WorkshopDetails{
			ID:            d.PublishedFileID,
			Title:         d.Title,
			Description:   d.Description,
			Creator:       d.Creator,
			PreviewURL:    d.PreviewURL,
			FileSize:      d.FileSize,
			Subscriptions: d.Subscriptions,
			Tags:          tags,
			CreatedAt:     time.Unix(d.TimeCreated, 0).UTC(),
			UpdatedAt:     time.Unix(d.TimeUpdated, 0).UTC(),
		}
		if d.VoteData != nil {
			detail.Rating = d.VoteData.Score
		}
		details[d.PublishedFileID] = detail
	}
	return details, nil
}
