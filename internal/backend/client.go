package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/metrics"
	"hamrosewa/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cachePrefix = "hamro:catalog:"

// Client calls the Hamro Sewa REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// APIError is a failure the backend reported in its response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned http %d", e.Status)
	}
	return fmt.Sprintf("backend returned http %d: %s", e.Status, e.Message)
}

// NewClient constructs a client for baseURL. A zero timeout means requests
// only end with their context.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis caching for catalog GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) ListServices(ctx context.Context, q domain.ServiceQuery) ([]models.Service, error) {
	params := url.Values{}
	if q.Popular {
		params.Set("popular", "true")
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	endpoint := c.baseURL + "/api/services"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	return cachedList[models.Service](ctx, c, "services", "services:"+params.Encode(), endpoint)
}

func (c *Client) ParentCategories(ctx context.Context) ([]models.Category, error) {
	return cachedList[models.Category](ctx, c, "categories_parent", "categories:parent", c.baseURL+"/api/categories/parent")
}

func (c *Client) AllCategories(ctx context.Context) ([]models.Category, error) {
	return cachedList[models.Category](ctx, c, "categories_all", "categories:all", c.baseURL+"/api/categories/all")
}

func (c *Client) CategoryBySlug(ctx context.Context, slug string) (*models.CategoryDetail, error) {
	endpoint := fmt.Sprintf("%s/api/categories/slug/%s", c.baseURL, url.PathEscape(slug))
	var detail models.CategoryDetail
	if err := c.cachedGet(ctx, "category_slug", "category:"+slug, endpoint, &detail); err != nil {
		return nil, err
	}
	if detail.Category.ID == "" {
		return nil, domain.ErrNotFound
	}
	return &detail, nil
}

func (c *Client) ServicesByCategory(ctx context.Context, slug, subcategory string) ([]models.Service, error) {
	endpoint := fmt.Sprintf("%s/api/services/category/%s", c.baseURL, url.PathEscape(slug))
	if subcategory != "" {
		endpoint += "?subcategory=" + url.QueryEscape(subcategory)
	}
	return cachedList[models.Service](ctx, c, "services_category", "services:category:"+slug+":"+subcategory, endpoint)
}

func (c *Client) ServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	endpoint := fmt.Sprintf("%s/api/services/slug/%s", c.baseURL, url.PathEscape(slug))
	var service *models.Service
	if err := c.cachedGet(ctx, "service_slug", "service:"+slug, endpoint, &service); err != nil {
		return nil, err
	}
	if service == nil || service.ID == "" {
		return nil, domain.ErrNotFound
	}
	return service, nil
}

// BookedSlots returns the time slot labels already booked for serviceID on
// date (YYYY-MM-DD). Never cached.
func (c *Client) BookedSlots(ctx context.Context, serviceID, date string) ([]string, error) {
	params := url.Values{}
	params.Set("serviceId", serviceID)
	params.Set("date", date)
	endpoint := c.baseURL + "/api/bookings/booked-slots?" + params.Encode()

	var raw json.RawMessage
	if err := c.get(ctx, "booked_slots", endpoint, &raw); err != nil {
		return nil, err
	}
	return decodeBookedSlots(raw)
}

// CreateBooking submits a booking. A rejection because the slot is taken
// returns the result together with domain.ErrSlotTaken.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	const endpointName = "create_booking"

	status, body, err := c.send(ctx, http.MethodPost, c.baseURL+"/api/bookings", req)
	if err != nil {
		c.observe(endpointName, err)
		return nil, err
	}

	var result models.BookingResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil && status < 300 {
			c.observe(endpointName, err)
			return nil, fmt.Errorf("decode booking response: %w", err)
		}
		var data struct {
			ID        string `json:"_id"`
			BookingID string `json:"bookingId"`
		}
		if env, ok := unwrapEnvelope(body); ok && json.Unmarshal(env.Data, &data) == nil {
			result.BookingID = firstNonEmpty(result.BookingID, data.BookingID, data.ID)
		}
	}

	switch {
	case result.IsBooked:
		err = domain.ErrSlotTaken
	case status == http.StatusConflict:
		result.IsBooked = true
		err = domain.ErrSlotTaken
	case status >= 300:
		err = &APIError{Status: status, Message: result.Message}
	case !result.Success:
		err = &APIError{Status: status, Message: firstNonEmpty(result.Message, "booking was not accepted")}
	}
	c.observe(endpointName, err)
	if err != nil {
		return &result, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "login", c.baseURL+"/api/users/login", body)
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*models.AuthResult, error) {
	return c.authenticate(ctx, "register", c.baseURL+"/api/users/register", req)
}

func (c *Client) authenticate(ctx context.Context, endpointName, endpoint string, body any) (*models.AuthResult, error) {
	status, raw, err := c.send(ctx, http.MethodPost, endpoint, body)
	if err == nil {
		err = checkStatus(status, raw)
	}
	var result models.AuthResult
	if err == nil {
		err = decodePayload(raw, &result)
	}
	if err == nil && result.Token == "" {
		err = &APIError{Status: status, Message: "missing token in response"}
	}
	c.observe(endpointName, err)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) cachedGet(ctx context.Context, endpointName, cacheKey, endpoint string, out any) error {
	if c.readCache(ctx, cacheKey, out) {
		metrics.IncBackend(endpointName, "cache_hit")
		return nil
	}

	var raw json.RawMessage
	if err := c.get(ctx, endpointName, endpoint, &raw); err != nil {
		return err
	}
	if err := decodePayload(raw, out); err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

// cachedList is cachedGet for list endpoints. Records that fail to decode are
// logged and skipped; the rest of the list is kept.
func cachedList[T any](ctx context.Context, c *Client, endpointName, cacheKey, endpoint string) ([]T, error) {
	var items []T
	if c.readCache(ctx, cacheKey, &items) {
		metrics.IncBackend(endpointName, "cache_hit")
		return items, nil
	}

	var raw json.RawMessage
	if err := c.get(ctx, endpointName, endpoint, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw, func(index int, err error) {
		c.logger.Warn().Err(err).Str("endpoint", endpointName).Int("index", index).Msg("skipping malformed record")
	})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, items)
	return items, nil
}

func (c *Client) get(ctx context.Context, endpointName, endpoint string, out *json.RawMessage) error {
	status, body, err := c.send(ctx, http.MethodGet, endpoint, nil)
	if err == nil {
		err = checkStatus(status, body)
	}
	c.observe(endpointName, err)
	if err != nil {
		return err
	}
	*out = body
	return nil
}

// send performs one request. No retries.
func (c *Client) send(ctx context.Context, method, endpoint string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %v", domain.ErrUnreachable, err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) observe(endpointName string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	case errors.Is(err, domain.ErrUnreachable):
		outcome = "unreachable"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrSlotTaken):
		outcome = "slot_taken"
	default:
		outcome = "error"
	}
	metrics.IncBackend(endpointName, outcome)
	if err != nil && outcome != "canceled" {
		c.logger.Debug().Err(err).Str("endpoint", endpointName).Str("outcome", outcome).Msg("backend call failed")
	}
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cachePrefix+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cachePrefix+key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("write catalog cache")
	}
}

func checkStatus(status int, body []byte) error {
	if status < 300 {
		if env, ok := unwrapEnvelope(body); ok && env.Success != nil && !*env.Success {
			return &APIError{Status: status, Message: env.Message}
		}
		return nil
	}
	if status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &msg)
	return &APIError{Status: status, Message: firstNonEmpty(msg.Message, msg.Error, http.StatusText(status))}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
