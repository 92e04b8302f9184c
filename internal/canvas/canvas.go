// Package canvas wraps the Canvas LMS REST API. Responses are decoded into
// the shapes in internal/types; list endpoints follow Canvas Link-header
// pagination. The account term list changes rarely and is cached.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

const termsCacheKey = "enrollment_terms"

// Client talks to one Canvas account.
type Client struct {
	baseURL     string
	accessToken string
	accountID   string
	httpClient  *http.Client
	cache       *cache.Cache
}

// New builds a client for the given Canvas instance and root account.
func New(baseURL, accessToken, accountID string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		accountID:   accountID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cache:       cache.New(30*time.Minute, 10*time.Minute),
	}
}

// GetCourse fetches a course site, including its enrollment term.
func (c *Client) GetCourse(ctx context.Context, siteID int) (*types.CanvasSite, error) {
	var site types.CanvasSite
	path := fmt.Sprintf("/api/v1/courses/%d?include[]=term", siteID)
	if err := c.get(ctx, path, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// GetCourseSections fetches all sections of a course site.
func (c *Client) GetCourseSections(ctx context.Context, siteID int) ([]types.CanvasSection, error) {
	var sections []types.CanvasSection
	path := fmt.Sprintf("/api/v1/courses/%d/sections", siteID)
	if err := c.getPaginated(ctx, path, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// GetCourseUsers fetches all users of a course site with email and enrollments.
func (c *Client) GetCourseUsers(ctx context.Context, siteID int) ([]types.CanvasUser, error) {
	var users []types.CanvasUser
	path := fmt.Sprintf("/api/v1/courses/%d/users?include[]=email&include[]=enrollments", siteID)
	if err := c.getPaginated(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetCourseSettings fetches the settings of a course site.
func (c *Client) GetCourseSettings(ctx context.Context, siteID int) (*types.CourseSettings, error) {
	var settings types.CourseSettings
	path := fmt.Sprintf("/api/v1/courses/%d/settings", siteID)
	if err := c.get(ctx, path, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetTerms fetches the account's enrollment terms, cached between calls.
func (c *Client) GetTerms(ctx context.Context) ([]types.CanvasTerm, error) {
	if cached, found := c.cache.Get(termsCacheKey); found {
		return cached.([]types.CanvasTerm), nil
	}
	var page struct {
		EnrollmentTerms []types.CanvasTerm `json:"enrollment_terms"`
	}
	path := fmt.Sprintf("/api/v1/accounts/%s/terms?per_page=100", c.accountID)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	c.cache.Set(termsCacheKey, page.EnrollmentTerms, cache.DefaultExpiration)
	return page.EnrollmentTerms, nil
}

// Ping verifies the account is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var account struct {
		ID int `json:"id"`
	}
	return c.get(ctx, fmt.Sprintf("/api/v1/accounts/%s", c.accountID), &account)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.request(ctx, http.MethodGet, path, nil, out)
	return err
}

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// getPaginated follows rel="next" Link headers, appending each page into out,
// which must be a pointer to a slice.
func (c *Client) getPaginated(ctx context.Context, path string, out any) error {
	page := path
	if strings.Contains(page, "?") {
		page += "&per_page=100"
	} else {
		page += "?per_page=100"
	}
	for page != "" {
		var raw json.RawMessage
		header, err := c.request(ctx, http.MethodGet, page, nil, &raw)
		if err != nil {
			return err
		}
		if err := appendPage(out, raw); err != nil {
			return err
		}
		page = ""
		if match := nextLinkPattern.FindStringSubmatch(header.Get("Link")); match != nil {
			next, err := url.Parse(match[1])
			if err != nil {
				return fmt.Errorf("invalid pagination link from Canvas: %w", err)
			}
			page = next.RequestURI()
		}
	}
	return nil
}

func appendPage(out any, raw json.RawMessage) error {
	switch target := out.(type) {
	case *[]types.CanvasSection:
		var page []types.CanvasSection
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("failed to decode Canvas response: %w", err)
		}
		*target = append(*target, page...)
	case *[]types.CanvasUser:
		var page []types.CanvasUser
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("failed to decode Canvas response: %w", err)
		}
		*target = append(*target, page...)
	default:
		return fmt.Errorf("unsupported page type %T", out)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build Canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Canvas request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("Canvas returned %d for %s %s: %s", resp.StatusCode, method, path, data)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode Canvas response: %w", err)
		}
	}
	return resp.Header, nil
}
