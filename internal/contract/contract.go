// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/mock"
)

// MetricsSource yields metric records in a stable order.
// This allows the render pipeline to read from a file or a database alike.
type MetricsSource interface {
	// LoadMetrics returns every record with Row set to its 1-based position.
	LoadMetrics(ctx context.Context) ([]schema.MetricRecord, error)

	// Describe returns a human-readable origin for log lines.
	Describe() string
}

// MetricsStore defines the persistent metrics table operations.
type MetricsStore interface {
	MetricsSource

	// ImportRecords inserts records, optionally replacing the current table contents.
	ImportRecords(ctx context.Context, records []schema.MetricRecord, replace bool) (int, error)

	// GetStatus returns status information about the metrics store.
	GetStatus(ctx context.Context) (schema.MetricsStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// MockMetricsSource is a testify mock of MetricsSource.
type MockMetricsSource struct {
	mock.Mock
}

var _ MetricsSource = &MockMetricsSource{} // Compile-time check

// LoadMetrics implements the MetricsSource interface.
func (m *MockMetricsSource) LoadMetrics(ctx context.Context) ([]schema.MetricRecord, error) {
	ret := m.Called(ctx)
	records, _ := ret.Get(0).([]schema.MetricRecord)
	return records, ret.Error(1)
}

// Describe implements the MetricsSource interface.
func (m *MockMetricsSource) Describe() string {
	return "mock"
}
