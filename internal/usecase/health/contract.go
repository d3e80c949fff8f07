package health

import "context"

// StorePinger checks document store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// AssetChecker checks asset backend availability.
type AssetChecker interface {
	HealthCheck(ctx context.Context) error
}
