package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/bond"
	"github.com/simaogato/networth-backend/internal/usecase/forecast"
	"github.com/simaogato/networth-backend/internal/usecase/valuation"
)

// Server implements the ForecastService gRPC server
type Server struct {
	ForecastService  *forecast.ForecastService
	ValuationService *valuation.ValuationService

	now func() time.Time
}

var _ ForecastServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	forecastService *forecast.ForecastService,
	valuationService *valuation.ValuationService,
) *Server {
	return &Server{
		ForecastService:  forecastService,
		ValuationService: valuationService,
		now:              time.Now,
	}
}

// asOf returns the as_of request field, or the current time
func (s *Server) asOf(req *structpb.Struct) (time.Time, error) {
	at, err := optionalTime(req, "as_of")
	if err != nil {
		return time.Time{}, err
	}
	if at != nil {
		return *at, nil
	}
	return s.now(), nil
}

// EstimateGrowthRate handles the EstimateGrowthRate RPC
func (s *Server) EstimateGrowthRate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := parseUserID(req)
	if err != nil {
		return nil, err
	}
	now, err := s.asOf(req)
	if err != nil {
		return nil, err
	}

	rate, err := s.ForecastService.EstimateGrowthRate(ctx, userID, now)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{
		"user_id":              userID.String(),
		"monthly_rate_percent": rate,
	})
}

// BuildForecast handles the BuildForecast RPC
func (s *Server) BuildForecast(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := parseUserID(req)
	if err != nil {
		return nil, err
	}
	overrides, err := parseOverrides(req)
	if err != nil {
		return nil, err
	}
	now, err := s.asOf(req)
	if err != nil {
		return nil, err
	}

	report, err := s.ForecastService.BuildForecast(ctx, userID, overrides, now)
	if err != nil {
		return nil, mapError(err)
	}

	return reportToStruct(report)
}

// GetPortfolioValue handles the GetPortfolioValue RPC
func (s *Server) GetPortfolioValue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := parseUserID(req)
	if err != nil {
		return nil, err
	}
	now, err := s.asOf(req)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.ValuationService.GetPortfolioValue(ctx, userID, now)
	if err != nil {
		return nil, mapError(err)
	}

	return valuationToStruct(portfolio)
}

// ComputeBondValue handles the ComputeBondValue RPC.
// It values a single bond at evaluation_date (default: as_of, then now) and at maturity,
// and returns the per-period rate schedule derived from the maturity and reset frequency.
func (s *Server) ComputeBondValue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	purchasePrice, err := optionalDecimal(req, "purchase_price")
	if err != nil {
		return nil, err
	}
	if purchasePrice == nil {
		return nil, status.Error(codes.InvalidArgument, "purchase_price is required")
	}
	if purchasePrice.IsNegative() {
		return nil, status.Error(codes.InvalidArgument, "purchase_price must not be negative")
	}

	purchaseDate, err := optionalTime(req, "purchase_date")
	if err != nil {
		return nil, err
	}
	if purchaseDate == nil {
		return nil, status.Error(codes.InvalidArgument, "purchase_date is required")
	}

	evaluationDate, err := optionalTime(req, "evaluation_date")
	if err != nil {
		return nil, err
	}
	if evaluationDate == nil {
		at, err := s.asOf(req)
		if err != nil {
			return nil, err
		}
		evaluationDate = &at
	}

	settings, err := parseBondSettings(req)
	if err != nil {
		return nil, err
	}

	value := forecast.ComputeBondValue(settings, *purchasePrice, *purchaseDate, *evaluationDate)

	response := map[string]interface{}{
		"evaluation_date": formatTime(*evaluationDate),
		"value":           value.StringFixed(2),
		"maturity_value":  nil,
		"periods":         nil,
		"interest_rates":  map[string]interface{}{},
	}
	if settings.MaturityDate != nil {
		response["maturity_value"] = bond.MaturityValue(settings, *purchasePrice, *purchaseDate).StringFixed(2)
		response["periods"] = bond.PeriodsUntil(*purchaseDate, *settings.MaturityDate, settings.InterestRateResetFrequencyMonths)

		// the rate schedule a client should store for these settings
		reconfigured := bond.Reconfigure(*settings, *purchaseDate)
		response["interest_rates"] = ratesToMap(reconfigured.InterestRates)
	}

	return newStruct(response)
}

// mapError converts domain errors to appropriate gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrExchangeRateNotFound):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Map common validation errors to InvalidArgument
	if strings.Contains(errorMsg, "must be positive") ||
		strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "must not be negative") ||
		strings.Contains(errorMsg, "must reference") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	if strings.Contains(errorMsg, "not found") {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
