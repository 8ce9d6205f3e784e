package domain

import "time"

// RegistryKind labels which registry a metric refers to.
type RegistryKind string

const (
	RegistryPrompts   RegistryKind = "prompts"
	RegistryResources RegistryKind = "resources"
)

// Metrics records control plane observations.
type Metrics interface {
	ObserveReload(kind RegistryKind, duration time.Duration, newlyRegistered int, err error)
	SetRegistryEntries(kind RegistryKind, count int)
	ObserveRemoteFetch(source string, duration time.Duration, err error)
	ObserveSinkRegistration(kind HandlerKind, err error)
	ObserveExport(exported int, failed int)
	ObserveHTTPRequest(route string, status int, duration time.Duration)
	AddEventSubscribers(delta int)
}
