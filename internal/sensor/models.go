package sensor

import (
	"time"
)

// Location is the best-effort place a reading was taken at. Defaults are
// applied when resolution fails, so fields are never left empty on a
// persisted reading.
type Location struct {
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Reading is one enriched sensor record. Readings are immutable once written;
// CreatedAt is the sole ordering key, with the store-assigned Seq breaking ties.
type Reading struct {
	ID  string `json:"id" gorm:"primaryKey;size:36"`
	Seq uint64 `json:"-" gorm:"autoIncrement;index"`

	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	GasIndex    float64 `json:"gasIndex"`

	// Enrichment fields. Stored as 0 when the weather provider was
	// unavailable; see the stats endpoint for how they are surfaced.
	Rainfall  float64 `json:"rainfall"`
	WindSpeed float64 `json:"windSpeed"`
	Pressure  float64 `json:"pressure"`
	UVIndex   float64 `json:"uvIndex"`

	WeatherDescription string   `json:"weatherDescription"`
	Location           Location `json:"location" gorm:"embedded;embeddedPrefix:location_"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// Stats is the aggregate view over the whole record set.
type Stats struct {
	AvgTemperature float64 `json:"avgTemperature"`
	AvgHumidity    float64 `json:"avgHumidity"`
	Count          int64   `json:"count"`
}

// Conditions holds the atmospheric fields a weather provider can supply for a
// coordinate pair. Partial responses are fine; missing fields stay zero.
type Conditions struct {
	WindSpeed     float64
	Pressure      float64
	UVIndex       float64
	Precipitation float64
}

// Hint carries whatever the caller knows about where a reading came from.
// All fields are optional; resolution falls back layer by layer.
type Hint struct {
	Lat      *float64
	Lon      *float64
	ClientIP string
}

// WeatherContext is the numeric context passed to a generative summarizer.
type WeatherContext struct {
	Temperature float64
	Humidity    float64
	Rainfall    float64
	AirTier     int
	Language    string
	Location    Location
}
