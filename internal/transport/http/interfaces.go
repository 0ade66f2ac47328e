package http

import (
	"context"

	"aqdaily/internal/operations"
	"aqdaily/internal/services"
	"aqdaily/pkg/contracts/domain"
)

// ReportServiceInterface is the report access used by ReportHandler.
type ReportServiceInterface interface {
	Days(ctx context.Context) ([]string, error)
	Report(ctx context.Context, day string) (*domain.AvailabilityReport, error)
	ReportHTML(ctx context.Context, day string) ([]byte, error)
}

// OperationServiceInterface starts and inspects background pipeline runs.
type OperationServiceInterface interface {
	StartOperation(ctx context.Context, req operations.OperationRequest) (string, error)
	Status() services.OperationStatus
}

var (
	_ ReportServiceInterface    = (*services.ReportService)(nil)
	_ OperationServiceInterface = (*services.OperationService)(nil)
)
