// Package advisory talks to the external generative advisory service and
// serves curated fallback content when the service is unconfigured or down.
// Absence of the service is a normal, expected condition everywhere in this
// package.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/agrisense/agrisense-backend/internal/sensor"
	"github.com/agrisense/agrisense-backend/internal/upstream"
)

// Client is the HTTP client for the advisory service. It implements
// sensor.Summarizer for the ingestion pipeline's weatherDescription step.
type Client struct {
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a client for the advisory service at baseURL.
func NewClient(client *http.Client, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpCfg: upstream.ClientConfig{
			Client: client,
			// Generative calls are expensive; one retry is enough.
			Backoff: upstream.BackoffConfig{
				MaxRetries:      1,
				InitialInterval: upstream.DefaultBackoff().InitialInterval,
				MaxInterval:     upstream.DefaultBackoff().MaxInterval,
			},
		},
		circuit: upstream.NewBreaker("advisory"),
	}
}

// post sends body as JSON to path and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// SummarizeWeather asks for a short natural-language weather summary.
func (c *Client) SummarizeWeather(ctx context.Context, wc sensor.WeatherContext) (string, error) {
	body := map[string]interface{}{
		"city":            wc.Location.City,
		"state":           wc.Location.State,
		"country":         wc.Location.Country,
		"lat":             wc.Location.Lat,
		"lon":             wc.Location.Lon,
		"temperature":     wc.Temperature,
		"humidity":        wc.Humidity,
		"rainfall":        wc.Rainfall,
		"pollution_level": wc.AirTier,
		"language":        wc.Language,
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/summarize_weather", body, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", fmt.Errorf("empty summary from advisory service")
	}
	return CleanMarkdown(out.Text), nil
}

// GenerateAdvisory asks for a personalized crop advisory.
func (c *Client) GenerateAdvisory(ctx context.Context, req AdvisoryRequest) (Advisory, error) {
	body := map[string]interface{}{
		"crop_name":       req.CropName,
		"temperature":     req.Temperature,
		"humidity":        req.Humidity,
		"rainfall":        req.Rainfall,
		"pollution_level": req.PollutionLevel,
		"language":        req.Language,
	}

	var out struct {
		Text     string `json:"advisory_text"`
		ImageURL string `json:"advisory_image_url"`
	}
	if err := c.post(ctx, "/generate_advisory", body, &out); err != nil {
		return Advisory{}, err
	}
	if out.Text == "" {
		return Advisory{}, fmt.Errorf("empty advisory from advisory service")
	}
	return Advisory{Text: CleanMarkdown(out.Text), ImageURL: out.ImageURL}, nil
}

// CropCare asks for growth-stage-specific care recommendations.
func (c *Client) CropCare(ctx context.Context, req CropCareRequest) (string, error) {
	body := map[string]interface{}{
		"crop_name":    req.CropName,
		"temperature":  req.Temperature,
		"humidity":     req.Humidity,
		"rainfall":     req.Rainfall,
		"mq2":          req.GasIndex,
		"growth_stage": req.GrowthStage,
		"language":     req.Language,
	}

	var out struct {
		Advice struct {
			AIRecommendations string `json:"aiRecommendations"`
		} `json:"advice"`
	}
	if err := c.post(ctx, "/crop_care_advice", body, &out); err != nil {
		return "", err
	}
	if out.Advice.AIRecommendations == "" {
		return "", fmt.Errorf("empty crop care advice from advisory service")
	}
	return CleanMarkdown(out.Advice.AIRecommendations), nil
}

// Videos asks for educational video recommendations.
func (c *Client) Videos(ctx context.Context, req CropCareRequest) ([]Video, error) {
	body := map[string]interface{}{
		"crop_name":    req.CropName,
		"temperature":  req.Temperature,
		"humidity":     req.Humidity,
		"rainfall":     req.Rainfall,
		"growth_stage": req.GrowthStage,
		"language":     req.Language,
	}

	var out struct {
		Videos []Video `json:"videos"`
	}
	if err := c.post(ctx, "/get_educational_videos", body, &out); err != nil {
		return nil, err
	}
	if len(out.Videos) == 0 {
		return nil, fmt.Errorf("no videos from advisory service")
	}
	return out.Videos, nil
}

// Chat forwards a free-form farmer question.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	if err := c.post(ctx, "/chatbot", map[string]string{"message": message}, &out); err != nil {
		return "", err
	}
	if out.Reply == "" {
		return "", fmt.Errorf("empty reply from advisory service")
	}
	return CleanMarkdown(out.Reply), nil
}
