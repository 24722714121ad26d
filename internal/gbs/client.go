package gbs

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/sso"
)

// DefaultTimeout applies when a caller passes no per-call timeout
const DefaultTimeout = 300 * time.Second

// Authenticator yields the SSO handle used to sign requests
type Authenticator interface {
	EnsureLoaded() (*sso.Handle, error)
}

// Client talks to the Green Building Studio REST API
type Client struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
	limiter   *rate.Limiter
	auth      Authenticator
}

// Option configures a Client
type Option func(*Client)

// WithTransport sets the base round tripper (tests use httptest transports)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithTimeout sets the default per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit throttles outbound calls
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithAuthenticator signs requests with the SSO token source
func WithAuthenticator(a Authenticator) Option {
	return func(c *Client) { c.auth = a }
}

// NewClient creates a new GBS client
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate makes sure the SSO capability is loaded. Without an
// authenticator requests go out unsigned.
func (c *Client) Authenticate() error {
	if c.auth == nil {
		return nil
	}
	_, err := c.auth.EnsureLoaded()
	return err
}

// CreateBaseRun uploads a gbXML file as a new base run of projectID.
// A nil id with a nil error means GBS answered without a run id.
func (c *Client) CreateBaseRun(ctx context.Context, projectID int, gbXMLPath string, timeout time.Duration) (*int, error) {
	logger := logging.New(ctx)

	item, err := NewRunItemFromFile(projectID, gbXMLPath)
	if err != nil {
		return nil, err
	}
	logger.LogDebugf("create_base_run", "project_id=%d file=%s zipped=%s", projectID, filepath.Base(gbXMLPath),
		humanize.Bytes(uint64(len(item.ZipData))))

	body, err := c.post(ctx, fmt.Sprintf(createBaseRunPath, formatXML), item, timeout)
	if err != nil {
		logger.LogError("create_base_run", err)
		return nil, err
	}
	return parseID(body)
}

// CreateProject creates a project and returns its new id
func (c *Client) CreateProject(ctx context.Context, item NewProjectItem) (int, error) {
	body, err := c.post(ctx, fmt.Sprintf(createProjectPath, formatXML), item, 0)
	if err != nil {
		logging.New(ctx).LogError("create_project", err)
		return 0, err
	}
	id, err := parseID(body)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("create project: empty response")
	}
	return *id, nil
}

// GetProjectList lists the caller's projects
func (c *Client) GetProjectList(ctx context.Context) ([]Project, error) {
	body, err := c.get(ctx, fmt.Sprintf(projectListPath, formatXML), nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var list ProjectList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project list: %w", err)
	}
	return list.Projects, nil
}

// GetDefaultUtilityCost fetches default utility costs for a building type at a location (degrees)
func (c *Client) GetDefaultUtilityCost(ctx context.Context, buildingTypeID int, lat, lon float64) (*DefaultUtilityItem, error) {
	q := url.Values{}
	q.Set("BuildingTypeId", strconv.Itoa(buildingTypeID))
	q.Set("Latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("Longitude", strconv.FormatFloat(lon, 'f', -1, 64))

	body, err := c.get(ctx, fmt.Sprintf(defaultUtilityCostPath, formatXML), q)
	if err != nil {
		return nil, err
	}
	var item DefaultUtilityItem
	if err := xml.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal utility cost: %w", err)
	}
	return &item, nil
}

// ExecuteMassRuns turns parametric runs on or off for a project
func (c *Client) ExecuteMassRuns(ctx context.Context, projectID int, execute bool) error {
	_, err := c.post(ctx, fmt.Sprintf(massRunsPath, formatXML), MassRunItem{ProjectID: projectID, ExecuteMassRuns: execute}, 0)
	return err
}

// NewRunItemFromFile builds a run item holding the zipped gbXML file
func NewRunItemFromFile(projectID int, gbXMLPath string) (NewRunItem, error) {
	data, err := os.ReadFile(gbXMLPath)
	if err != nil {
		return NewRunItem{}, fmt.Errorf("read gbxml: %w", err)
	}

	name := filepath.Base(gbXMLPath)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		return NewRunItem{}, fmt.Errorf("zip gbxml: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return NewRunItem{}, fmt.Errorf("zip gbxml: %w", err)
	}
	if err := zw.Close(); err != nil {
		return NewRunItem{}, fmt.Errorf("zip gbxml: %w", err)
	}

	return NewRunItem{
		Title:     strings.TrimSuffix(name, filepath.Ext(name)),
		ProjectID: projectID,
		ZipData:   base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, timeout time.Duration) ([]byte, error) {
	data, err := xml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	return c.do(req, timeout)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, 0)
}

func (c *Client) do(req *http.Request, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	httpClient, err := c.httpClient(timeout)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		recordUpstreamCall(time.Since(start), err)
		return nil, fmt.Errorf("failed to call gbs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordUpstreamCall(time.Since(start), err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("gbs returned status %d: %s", resp.StatusCode, string(body))
		recordUpstreamCall(time.Since(start), err)
		return nil, err
	}
	recordUpstreamCall(time.Since(start), nil)
	return body, nil
}

func (c *Client) httpClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	rt := c.transport
	if c.auth != nil {
		h, err := c.auth.EnsureLoaded()
		if err != nil {
			return nil, err
		}
		if h != nil && h.TokenSource != nil {
			rt = &oauth2.Transport{Source: h.TokenSource, Base: c.transport}
		}
	}
	return &http.Client{Transport: rt, Timeout: timeout}, nil
}

func parseID(body []byte) (*int, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var r idResponse
	if err := xml.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	v := strings.TrimSpace(r.Value)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("response id %q is not numeric: %w", v, err)
	}
	return &id, nil
}
