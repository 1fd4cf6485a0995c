package advisory

import (
	"context"
	"log"
	"time"
)

// Service fronts the advisory client with fallback content. A nil client
// (service unconfigured) is a normal state: every method still answers.
type Service struct {
	client  *Client // nil when ADVISORY_API_URL is unset
	timeout time.Duration
}

// NewService creates the advisory service. client may be nil.
func NewService(client *Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{client: client, timeout: timeout}
}

// Configured reports whether a generative backend is wired in.
func (s *Service) Configured() bool {
	return s.client != nil
}

// GenerateAdvisory returns a crop advisory, generated when possible.
func (s *Service) GenerateAdvisory(ctx context.Context, req AdvisoryRequest) Advisory {
	req.Language = NormalizeLanguage(req.Language)
	if s.client != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		adv, err := s.client.GenerateAdvisory(callCtx, req)
		cancel()
		if err == nil {
			return adv
		}
		log.Printf("advisory: generate failed, serving fallback: %v", err)
	}
	return fallbackAdvisory(req)
}

// CropCare returns growth-stage care advice, generated when possible.
func (s *Service) CropCare(ctx context.Context, req CropCareRequest) string {
	req.Language = NormalizeLanguage(req.Language)
	if s.client != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		advice, err := s.client.CropCare(callCtx, req)
		cancel()
		if err == nil {
			return advice
		}
		log.Printf("advisory: crop care failed, serving fallback: %v", err)
	}
	return fallbackCropCare(req)
}

// Videos returns educational video recommendations.
func (s *Service) Videos(ctx context.Context, req CropCareRequest) []Video {
	req.Language = NormalizeLanguage(req.Language)
	if s.client != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		videos, err := s.client.Videos(callCtx, req)
		cancel()
		if err == nil {
			return videos
		}
		log.Printf("advisory: videos failed, serving fallback: %v", err)
	}
	return FallbackVideos(req.CropName, req.GrowthStage)
}

// Crops returns the selectable crop list.
func (s *Service) Crops() []Crop {
	return FallbackCrops()
}

// Stages returns the growth stages for a crop.
func (s *Service) Stages(_ string) []GrowthStage {
	return FallbackStages()
}

// Chat answers a free-form farmer question.
func (s *Service) Chat(ctx context.Context, message string) string {
	if s.client != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		reply, err := s.client.Chat(callCtx, message)
		cancel()
		if err == nil {
			return reply
		}
		log.Printf("advisory: chat failed, serving fallback: %v", err)
	}
	return fallbackChat(message)
}
