package ports

import "time"

// Metrics observaciones de los motores de procedencia. Implementaciones deben tolerar
// llamadas concurrentes; NopMetrics descarta todo.
type Metrics interface {
	BatchClassified(status, change string)
	ObserveScoreProvider(outcome string, d time.Duration)
	TransportRecorded(fuelType string)
	TransportRejected(reason string)
	OriginsCacheLookup(hit bool)
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) BatchClassified(string, string) {}

func (NopMetrics) ObserveScoreProvider(string, time.Duration) {}

func (NopMetrics) TransportRecorded(string) {}

func (NopMetrics) TransportRejected(string) {}

func (NopMetrics) OriginsCacheLookup(bool) {}
