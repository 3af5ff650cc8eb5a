package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type names published by the service.
const (
	TypeOrdersReplaced    = "com.soaco.projection.orders.replaced"
	TypeStockReplaced     = "com.soaco.projection.stock.replaced"
	TypeRoutesSynced      = "com.soaco.projection.routes.synchronized"
	TypeRoutesResequenced = "com.soaco.projection.routes.resequenced"
)

// Envelope is the integration event wrapper, CloudEvents-shaped.
type Envelope struct {
	SpecVersion     string    `json:"specversion"`
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Source          string    `json:"source"`
	Subject         string    `json:"subject,omitempty"`
	Time            time.Time `json:"time"`
	DataContentType string    `json:"datacontenttype"`
	Data            any       `json:"data,omitempty"`

	CorrelationID string `json:"correlationid,omitempty"`
}

// New builds an Envelope for the given type and payload.
func New(eventType, source, subject string, data any) *Envelope {
	return &Envelope{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Type:            eventType,
		Source:          source,
		Subject:         subject,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// WithCorrelationID attaches a correlation id for tracing across services.
func (e *Envelope) WithCorrelationID(id string) *Envelope {
	e.CorrelationID = id
	return e
}
