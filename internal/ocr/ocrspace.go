package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.ocr.space/parse/image"
	// OCR.space ships a shared free-tier key.
	defaultAPIKey = "helloworld"
)

// Client extracts text from receipt photos via the OCR.space API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

type result struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	ErrorMessage          any  `json:"ErrorMessage"`
}

func NewClient(apiKey, baseURL string) *Client {
	if apiKey == "" {
		apiKey = defaultAPIKey
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// ParseImage sends the image as base64 and returns the recognized text.
func (c *Client) ParseImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("base64Image", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(image))
	form.Set("language", "eng")
	form.Set("isOverlayRequired", "false")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call OCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR API returned status %d", resp.StatusCode)
	}

	var res result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode OCR response: %w", err)
	}
	if res.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR processing failed: %v", res.ErrorMessage)
	}
	if len(res.ParsedResults) == 0 {
		return "", fmt.Errorf("OCR returned no results")
	}

	text := strings.TrimSpace(res.ParsedResults[0].ParsedText)
	if text == "" {
		return "", fmt.Errorf("OCR found no text in image")
	}
	return text, nil
}
