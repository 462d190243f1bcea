package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . DeliveryUseCase

import (
	"context"

	"github.com/m-mizutani/gakoci/pkg/domain/model"
)

// DeliveryUseCase defines the interface for webhook delivery processing
type DeliveryUseCase interface {
	// Accept records and decodes a delivery, then schedules its hooks
	Accept(ctx context.Context, delivery *model.Delivery) (*model.EventInfo, error)

	// Summary returns the delivery log view
	Summary() *model.DeliverySummary

	// RequestShutdown asks the serving process to stop
	RequestShutdown()

	// Accepting reports whether new deliveries are taken
	Accepting() bool

	// InFlight returns the number of deliveries still being processed
	InFlight() int
}
