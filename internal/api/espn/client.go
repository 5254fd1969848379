package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/config"
	"github.com/omarshaarawi/ffdata/internal/logging"
)

const defaultBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

var (
	ErrAccessDenied  = errors.New("access denied")
	ErrInvalidLeague = errors.New("invalid league")
	ErrServer        = errors.New("espn server error")
	ErrUnknownStatus = errors.New("unknown espn error")
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	Config     config.ESPNAPI
}

func NewClient(cfg config.ESPNAPI, logger *logging.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		logger:     logger,
		Config:     cfg,
	}
}

// Get issues a GET against endpoint and decodes the body into result.
// Comma separated param values are sent as repeated query keys.
func (c *Client) Get(ctx context.Context, endpoint string, params, headers map[string]string, result any) error {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}

	q := req.URL.Query()
	for key, value := range params {
		values := strings.Split(value, ",")
		for _, v := range values {
			q.Add(key, strings.TrimSpace(v))
		}
	}
	req.URL.RawQuery = q.Encode()

	c.setCookies(req)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	c.logger.Debug("espn request", "endpoint", endpoint, "query", req.URL.RawQuery)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "making request")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if err := sonic.Unmarshal(body, result); err != nil {
		return errors.Wrap(err, "decoding response")
	}

	return nil
}

func checkStatus(status int) error {
	switch {
	case status >= 500 && status <= 503:
		return errors.Wrapf(ErrServer, "status %d", status)
	case status == http.StatusUnauthorized:
		return errors.Wrapf(ErrAccessDenied, "status %d", status)
	case status == http.StatusNotFound:
		return errors.Wrapf(ErrInvalidLeague, "status %d", status)
	case status != http.StatusOK:
		return errors.Wrapf(ErrUnknownStatus, "status %d", status)
	}
	return nil
}

func (c *Client) setCookies(req *http.Request) {
	if c.Config.SWID == "" && c.Config.ESPNS2 == "" {
		return
	}
	req.AddCookie(&http.Cookie{Name: "SWID", Value: c.Config.SWID})
	req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.Config.ESPNS2})
}
