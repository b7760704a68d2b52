package health

import "context"

// StorePinger checks session store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks content search provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
