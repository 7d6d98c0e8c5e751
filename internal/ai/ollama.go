package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GenerateConfig struct {
	BaseURL string
	Model   string
}

// GenerateOptions are the sampling options forwarded to the backend.
type GenerateOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// OllamaClient speaks the Ollama generate API: /api/tags for the
// capability check and /api/generate for NDJSON token streams.
type OllamaClient struct {
	httpClient   *http.Client
	checkTimeout time.Duration
}

func NewOllamaClient(generateTimeout, checkTimeout time.Duration) *OllamaClient {
	if generateTimeout <= 0 {
		generateTimeout = 120 * time.Second
	}
	if checkTimeout <= 0 {
		checkTimeout = 10 * time.Second
	}
	return &OllamaClient{
		httpClient:   &http.Client{Timeout: generateTimeout},
		checkTimeout: checkTimeout,
	}
}

// ListModels returns the model names the backend advertises.
func (c *OllamaClient) ListModels(ctx context.Context, baseURL string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tags request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: tags status %d", ErrBackendReported, resp.StatusCode)
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// CheckModel verifies the backend is reachable and the configured model is
// installed. Failures classify as ErrBackendUnavailable or ErrModelNotFound.
func (c *OllamaClient) CheckModel(ctx context.Context, cfg GenerateConfig) error {
	names, err := c.ListModels(ctx, cfg.BaseURL)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, cfg.Model)
}

// StreamGenerate submits the prompt and re-emits each decoded increment via
// onChunk in arrival order. It returns the concatenated response on clean
// completion. Cancelling ctx aborts the backend read promptly.
func (c *OllamaClient) StreamGenerate(
	ctx context.Context,
	cfg GenerateConfig,
	system, prompt string,
	options GenerateOptions,
	onChunk func(chunk string) error,
) (string, error) {
	reqBody := map[string]interface{}{
		"model":   cfg.Model,
		"prompt":  prompt,
		"system":  system,
		"stream":  true,
		"options": options,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generate request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build generate request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrBackendReported, resp.StatusCode, string(raw))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var full strings.Builder
	done := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var unit struct {
			Response string `json:"response"`
			Done     bool   `json:"done"`
			Error    string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &unit); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if unit.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrBackendReported, unit.Error)
		}
		if unit.Response != "" {
			full.WriteString(unit.Response)
			if err := onChunk(unit.Response); err != nil {
				return "", err
			}
		}
		if unit.Done {
			done = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", classifyTransport(err)
	}
	if !done {
		return "", fmt.Errorf("%w: stream ended without done marker", ErrMalformedResponse)
	}
	return full.String(), nil
}
