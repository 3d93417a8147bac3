package judge_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

const (
	headerRapidAPIKey  = "X-RapidAPI-Key"
	headerRapidAPIHost = "X-RapidAPI-Host"
	maxErrorBodyBytes  = 512
)

// Judge0Client talks to a Judge0 compatible HTTP api.
type Judge0Client struct {
	BaseURL    string
	APIKey     string
	APIHost    string
	HTTPClient *http.Client
	logger     *logrus.Entry
}

func NewJudge0Client(baseURL, apiKey, apiHost string, timeout time.Duration) *Judge0Client {
	return &Judge0Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		APIHost:    apiHost,
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logrus.WithField("from", "judge0 client"),
	}
}

func (j *Judge0Client) Dispatch(ctx context.Context, req DispatchRequest) (string, error) {
	// marshal
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w, cannot marshal dispatch request, %w", arena_errors.ErrInternal, err)
	}

	endpoint := j.BaseURL + "/submissions?base64_encoded=false&wait=false"
	var created struct {
		Token string `json:"token"`
	}
	if err := j.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), &created); err != nil {
		return "", err
	}
	if created.Token == "" {
		return "", fmt.Errorf("%w, judge returned an empty token", arena_errors.ErrInternal)
	}

	j.logger.Debugf("dispatched submission, token %s", created.Token)
	return created.Token, nil
}

func (j *Judge0Client) Poll(ctx context.Context, token string) (Verdict, error) {
	endpoint := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", j.BaseURL, url.PathEscape(token))
	var verdict Verdict
	if err := j.do(ctx, http.MethodGet, endpoint, nil, &verdict); err != nil {
		return Verdict{}, err
	}
	verdict.Token = token
	return verdict, nil
}

func (j *Judge0Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w, cannot build judge request, %w", arena_errors.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if j.APIKey != "" {
		req.Header.Set(headerRapidAPIKey, j.APIKey)
	}
	if j.APIHost != "" {
		req.Header.Set(headerRapidAPIHost, j.APIHost)
	}

	res, err := j.HTTPClient.Do(req)
	if err != nil {
		return arena_errors.WrapIPCError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return fmt.Errorf(
			"%w, judge responded %d for %s %s: %s",
			arena_errors.ErrInternal,
			res.StatusCode,
			method,
			req.URL.Path,
			strings.TrimSpace(string(snippet)),
		)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w, cannot decode judge response, %w", arena_errors.ErrInternal, err)
	}
	return nil
}
