package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pos-sync/src/helpers"
	"pos-sync/src/logger"
	"pos-sync/src/models"
)

type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and exponential backoff.
func (nm *AsyncNetworkManager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()

	res, err := helpers.RetryWithBackoff(nm.Logger, "GET "+finalUrl,
		nm.Config.Network.MaxRetries+1, time.Second, func() (interface{}, error) {
			req, err := http.NewRequest("GET", finalUrl, nil)
			if err != nil {
				return nil, err
			}

			resp, err := nm.Client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode != 200 {
				return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			return body, nil
		})
	if err != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", err)
	}

	return res.([]byte), nil
}

// -----------------------------------------------------------------------------

// PostJSON performs a POST request with a JSON body. Writes are not
// retried: the change feed makes the outcome visible either way, and a
// blind retry could double-submit.
func (nm *AsyncNetworkManager) PostJSON(urlStr string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", urlStr, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return respBody, nil
}
