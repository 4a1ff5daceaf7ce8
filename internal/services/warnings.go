package services

import (
	"context"
	"slices"
	"sync"

	"github.com/epeers/whattheyhold/internal/models"
)

type collectorKey struct{}

// WarningCollector gathers the non-fatal issues of one request.
// Handlers create it, services append to it through the request context.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewWarningContext attaches an empty collector to ctx and returns both.
// The collector survives context.WithoutCancel since values are kept.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, collectorKey{}, wc), wc
}

func collectorFrom(ctx context.Context) *WarningCollector {
	wc, _ := ctx.Value(collectorKey{}).(*WarningCollector)
	return wc
}

// AddWarning records w on the collector carried by ctx, if any
func AddWarning(ctx context.Context, w models.Warning) {
	AddWarnings(ctx, w)
}

// AddWarnings records ws in order. Without a collector it does nothing.
func AddWarnings(ctx context.Context, ws ...models.Warning) {
	wc := collectorFrom(ctx)
	if wc == nil || len(ws) == 0 {
		return
	}
	wc.mu.Lock()
	wc.warnings = append(wc.warnings, ws...)
	wc.mu.Unlock()
}

// GetWarnings returns a snapshot of the collected warnings
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return slices.Clone(wc.warnings)
}

// Has reports whether a warning with code was collected
func (wc *WarningCollector) Has(code models.WarningCode) bool {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return slices.ContainsFunc(wc.warnings, func(w models.Warning) bool { return w.Code == code })
}
