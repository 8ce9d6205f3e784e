package telemetry

import (
	"time"

	"promptd/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveReload(_ domain.RegistryKind, _ time.Duration, _ int, _ error) {}

func (n *NoopMetrics) SetRegistryEntries(_ domain.RegistryKind, _ int) {}

func (n *NoopMetrics) ObserveRemoteFetch(_ string, _ time.Duration, _ error) {}

func (n *NoopMetrics) ObserveSinkRegistration(_ domain.HandlerKind, _ error) {}

func (n *NoopMetrics) ObserveExport(_ int, _ int) {}

func (n *NoopMetrics) ObserveHTTPRequest(_ string, _ int, _ time.Duration) {}

func (n *NoopMetrics) AddEventSubscribers(_ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
