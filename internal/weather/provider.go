package weather

import (
	"context"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
)

// ForecastSource abstracts the Met Office client.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64, g metoffice.Granularity, apiKey string) (*metoffice.ForecastResponse, error)
	SearchLocations(ctx context.Context, query string, limit int) ([]metoffice.Geo, error)
	TestAPIKey(ctx context.Context, apiKey string) (bool, error)
}

// KeyStore is the credential store collaborator.
type KeyStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
}

// SnapshotStore keeps the latest merged forecast per location.
type SnapshotStore interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
}

// Snapshot is a merged forecast captured at FetchedAt.
type Snapshot struct {
	Location  Location   `json:"location"`
	FetchedAt int64      `json:"fetchedAt"` // epoch milliseconds
	Forecasts []Forecast `json:"forecasts"`
}
