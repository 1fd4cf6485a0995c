package advisory

import (
	"fmt"
	"strings"

	"github.com/agrisense/agrisense-backend/internal/common"
	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// AdvisoryRequest is the input for a personalized crop advisory.
type AdvisoryRequest struct {
	CropName       string
	Temperature    float64
	Humidity       float64
	Rainfall       float64
	PollutionLevel int
	Language       string
}

// Advisory is a generated crop advisory.
type Advisory struct {
	Text     string `json:"advisoryText"`
	ImageURL string `json:"advisoryImageUrl,omitempty"`
}

// CropCareRequest is the input for crop care advice and video suggestions.
type CropCareRequest struct {
	CropName    string
	Temperature float64
	Humidity    float64
	Rainfall    float64
	GasIndex    float64
	GrowthStage string
	Language    string
}

// Video is one educational video recommendation.
type Video struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	SearchTerms     string `json:"search_terms"`
	Category        string `json:"category"`
	RelevanceReason string `json:"relevance_reason"`
}

// Crop is a selectable crop.
type Crop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GrowthStage is one stage in a crop's growth cycle.
type GrowthStage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

// FallbackCrops is served when the advisory service is unavailable.
func FallbackCrops() []Crop {
	return []Crop{
		{ID: "rice", Name: "Rice"},
		{ID: "maize", Name: "Maize"},
		{ID: "chickpea", Name: "Chickpea"},
		{ID: "kidneybeans", Name: "Kidney Beans"},
		{ID: "wheat", Name: "Wheat"},
		{ID: "cotton", Name: "Cotton"},
	}
}

// FallbackStages is the generic growth cycle served for any crop when the
// advisory service is unavailable.
func FallbackStages() []GrowthStage {
	return []GrowthStage{
		{ID: "germination", Name: "Germination", Duration: "7-14 days"},
		{ID: "vegetative", Name: "Vegetative", Duration: "30-60 days"},
		{ID: "flowering", Name: "Flowering", Duration: "7-14 days"},
		{ID: "grain_filling", Name: "Grain Filling", Duration: "15-30 days"},
		{ID: "maturity", Name: "Maturity", Duration: "7-14 days"},
	}
}

// FallbackVideos builds video recommendations from the crop and stage alone.
func FallbackVideos(cropName, growthStage string) []Video {
	if cropName == "" {
		cropName = "general"
	}
	if growthStage == "" {
		growthStage = "vegetative"
	}
	title := strings.ToUpper(cropName[:1]) + cropName[1:]
	return []Video{
		{
			Title:           fmt.Sprintf("%s Growing Guide", title),
			Description:     fmt.Sprintf("Complete guide for growing %s in %s stage", cropName, growthStage),
			SearchTerms:     fmt.Sprintf("%s %s growing guide", cropName, growthStage),
			Category:        "Crop Care",
			RelevanceReason: "Based on selected crop and growth stage",
		},
		{
			Title:           "Smart Agriculture Techniques",
			Description:     "Modern farming methods and technology",
			SearchTerms:     "smart agriculture technology",
			Category:        "Smart Farming",
			RelevanceReason: "General agricultural education",
		},
		{
			Title:           "Soil Management Best Practices",
			Description:     "How to maintain healthy soil for better yields",
			SearchTerms:     "soil management agriculture",
			Category:        "Soil Management",
			RelevanceReason: "Essential for all crops",
		},
		{
			Title:           "Weather Monitoring for Farmers",
			Description:     "Understanding weather patterns and their impact",
			SearchTerms:     "weather monitoring farming",
			Category:        "Weather Monitoring",
			RelevanceReason: "Important for crop planning",
		},
	}
}

// fallbackAdvisory derives a plain-text advisory from the numeric conditions
// using the deterministic rule engine.
func fallbackAdvisory(req AdvisoryRequest) Advisory {
	label := sensor.Describe(req.Temperature, req.Humidity)
	crop := req.CropName
	if crop == "" {
		crop = "your crop"
	}
	text := fmt.Sprintf(
		"Conditions are %s (%.1f°C, %.0f%% humidity, %.1f mm rainfall). "+
			"Monitor %s regularly, keep soil moisture steady, and check for early signs of pests and disease.",
		strings.ToLower(label), req.Temperature, req.Humidity, req.Rainfall, crop,
	)
	return Advisory{Text: text}
}

// fallbackCropCare mirrors the immediate-actions checklist the advisory
// service prepends to generated advice.
func fallbackCropCare(req CropCareRequest) string {
	stage := req.GrowthStage
	if stage == "" {
		stage = "vegetative"
	}
	return fmt.Sprintf(
		"Monitor %s growth in %s stage. Check soil moisture levels. Observe for pest signs.",
		req.CropName, stage,
	)
}

// fallbackChat answers a farmer question by keyword when the generative
// service is unavailable.
func fallbackChat(message string) string {
	switch {
	case common.HasAny(message, "water", "irrigat", "moisture"):
		return "Water early in the morning or late in the evening to reduce evaporation, and check soil moisture a few centimeters below the surface before irrigating."
	case common.HasAny(message, "pest", "insect", "bug"):
		return "Inspect the underside of leaves for eggs and larvae, remove affected foliage, and prefer targeted or biological treatments before broad-spectrum pesticides."
	case common.HasAny(message, "fertilizer", "nutrient", "manure"):
		return "Apply fertilizer based on a soil test where possible; split nitrogen applications across the season rather than applying it all at once."
	case common.HasAny(message, "weather", "rain", "temperature"):
		return "Check the latest reading on your dashboard for current conditions, and plan field work around the rainfall and wind values shown there."
	default:
		return "The advisory assistant is currently offline. Please try again later or consult your local agricultural extension office."
	}
}
