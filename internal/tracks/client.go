package tracks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"racebase/internal"
	"racebase/internal/config"
	"racebase/internal/util"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type trackPayload struct {
	Tracks   []map[string]any `json:"tracks"`
	NextPage *int             `json:"nextPage"`
	Total    *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TracksTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.TracksRateLimitRPS),
	}
}

// ListTracks walks the paged track master-data endpoint to the end.
func (c *Client) ListTracks(ctx context.Context) ([]internal.TrackRecord, error) {
	all := make([]internal.TrackRecord, 0)
	seen := map[int]struct{}{}
	page := 0

	for {
		query := map[string]string{}
		if page > 0 {
			query["page"] = strconv.Itoa(page)
		}

		body, err := c.fetchJSON(ctx, "tracks", query)
		if err != nil {
			return nil, err
		}

		var payload trackPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Tracks {
			track, err := toTrackRecord(raw)
			if err != nil {
				continue
			}
			all = append(all, track)
		}

		if payload.NextPage == nil || len(payload.Tracks) == 0 {
			break
		}
		if _, ok := seen[*payload.NextPage]; ok {
			break
		}
		seen[*payload.NextPage] = struct{}{}
		page = *payload.NextPage
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if err := c.cfg.Require("TRACKS_API_BASE_URL", c.cfg.TracksAPIBaseURL); err != nil {
		return nil, err
	}
	if err := c.cfg.Require("TRACKS_API_TOKEN", c.cfg.TracksAPIToken); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(c.cfg.TracksAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.TracksAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("tracks api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("tracks api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("tracks api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("tracks request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toTrackRecord(raw map[string]any) (internal.TrackRecord, error) {
	code, _ := raw["code"].(string)
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return internal.TrackRecord{}, errors.New("empty track code")
	}

	name, _ := raw["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return internal.TrackRecord{}, errors.New("empty track name")
	}

	track := internal.TrackRecord{Code: code, Name: name}
	track.Location = toStringPtr(raw["location"])
	track.Country = toStringPtr(raw["country"])
	return track, nil
}

func toStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return util.StringPtr(s)
}
