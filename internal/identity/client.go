// internal/identity/client.go

// Package identity talks to the mobile-money switch that owns the canonical
// client identity. The switch is the source of truth for the msisdn /
// external-client-id mapping the reconciler repairs against.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/common/metrics"
	"lending-backend/internal/requestlog"
)

const partnerName = "identity-switch"

// ProfileFetcher is the narrow interface the reconciler consumes.
type ProfileFetcher interface {
	// AccountInfoByMsisdn returns the external profile keyed by phone
	// number, or nil when the switch does not know the number.
	AccountInfoByMsisdn(ctx context.Context, msisdn string) (*Profile, error)
	// AccountInfoByClientID returns the external profile keyed by the
	// external client id, or nil when unknown.
	AccountInfoByClientID(ctx context.Context, clientID string) (*Profile, error)
}

// Profile is the switch's account record. Only the metadata block is
// consumed by this core.
type Profile struct {
	AccountID string   `json:"accountId,omitempty"`
	Status    string   `json:"status,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// Metadata tolerates both shapes the switch serves: the msisdn-keyed
// endpoint returns an object, the client-id-keyed endpoint returns a list
// of {key,value} pairs.
type Metadata struct {
	object  map[string]interface{}
	entries []metadataEntry
}

type metadataEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &m.entries)
	}
	return json.Unmarshal(data, &m.object)
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.entries != nil {
		return json.Marshal(m.entries)
	}
	return json.Marshal(m.object)
}

// Get looks a key up in either metadata shape. The second return is false
// when the key is absent.
func (m Metadata) Get(key string) (string, bool) {
	if m.object != nil {
		raw, ok := m.object[key]
		if !ok || raw == nil {
			return "", false
		}
		return stringify(raw), true
	}
	for _, entry := range m.entries {
		if entry.Key == key {
			if entry.Value == nil {
				return "", false
			}
			return stringify(entry.Value), true
		}
	}
	return "", false
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Metadata keys served by the switch.
const (
	MetadataClientID = "CLIENT_ID"
	MetadataMsisdn   = "MSISDN"
)

// Client is the HTTP implementation of ProfileFetcher.
type Client struct {
	baseURL    string
	username   string
	password   string
	authCode   string
	httpClient *http.Client
	auditor    requestlog.Recorder
	logger     logger.Logger
}

func NewClient(cfg config.IdentityConfig, auditor requestlog.Recorder, log logger.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		authCode: cfg.AuthorizationCode,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		auditor: auditor,
		logger:  log.WithFields(map[string]interface{}{"partner": partnerName}),
	}
}

// token performs the password-grant exchange and returns the access token,
// or an empty string when the switch refuses the exchange.
func (c *Client) token(ctx context.Context) (string, error) {
	endpoint := c.baseURL + "/oauth2_provider/v1.0/token/authorize"

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("scope", "write")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.authCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PartnerRequests.WithLabelValues(partnerName, "transport_error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
	}
	payload, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(payload, &body)

	c.auditor.Record(ctx, requestlog.Entry{
		Service:    partnerName,
		Component:  "identity",
		Function:   "token",
		Method:     http.MethodPost,
		URL:        endpoint,
		StatusCode: resp.StatusCode,
	})
	metrics.PartnerRequests.WithLabelValues(partnerName, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("token exchange refused", map[string]interface{}{
			"statusCode": resp.StatusCode,
		})
		return "", nil
	}
	return body.AccessToken, nil
}

func (c *Client) AccountInfoByMsisdn(ctx context.Context, msisdn string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/mts_api_compat/v1.0/mm/accounts/msisdn@%s/accountinfo", c.baseURL, msisdn)
	return c.accountInfo(ctx, "AccountInfoByMsisdn", endpoint)
}

func (c *Client) AccountInfoByClientID(ctx context.Context, clientID string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/mts_api/v2.0/ins/accounts/client_id@%s/accountinfo", c.baseURL, clientID)
	return c.accountInfo(ctx, "AccountInfoByClientID", endpoint)
}

func (c *Client) accountInfo(ctx context.Context, function, endpoint string) (*Profile, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PartnerRequests.WithLabelValues(partnerName, "transport_error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.auditor.Record(ctx, requestlog.Entry{
		Service:      partnerName,
		Component:    "identity",
		Function:     function,
		Method:       http.MethodGet,
		URL:          endpoint,
		ResponseBody: string(payload),
		StatusCode:   resp.StatusCode,
	})
	metrics.PartnerRequests.WithLabelValues(partnerName, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Info("account info lookup missed", map[string]interface{}{
			"function":   function,
			"statusCode": resp.StatusCode,
		})
		return nil, nil
	}

	var profile Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
