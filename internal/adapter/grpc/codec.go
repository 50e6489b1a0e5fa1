package grpc

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/forecast"
	"github.com/simaogato/networth-backend/internal/usecase/summary"
)

// field returns a request field, treating explicit nulls as absent
func field(req *structpb.Struct, key string) (*structpb.Value, bool) {
	value, ok := req.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return value, true
}

// parseUserID reads the mandatory user_id field
func parseUserID(req *structpb.Struct) (uuid.UUID, error) {
	value, ok := field(req, "user_id")
	if !ok || value.GetStringValue() == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	userID, err := uuid.Parse(value.GetStringValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}
	return userID, nil
}

// optionalNumber reads a number sent either as a JSON number or a numeric string
func optionalNumber(req *structpb.Struct, key string) (*float64, error) {
	value, ok := field(req, key)
	if !ok {
		return nil, nil
	}
	var number float64
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		number = kind.NumberValue
	case *structpb.Value_StringValue:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(kind.StringValue), 64)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
		}
		number = parsed
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: expected a number", key)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: must be a finite number", key)
	}
	return &number, nil
}

// optionalDecimal reads an amount. Strings keep their exact decimal representation.
func optionalDecimal(req *structpb.Struct, key string) (*decimal.Decimal, error) {
	value, ok := field(req, key)
	if !ok {
		return nil, nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s: must be a finite number", key)
		}
		amount := decimal.NewFromFloat(kind.NumberValue)
		return &amount, nil
	case *structpb.Value_StringValue:
		amount, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
		}
		return &amount, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: expected an amount", key)
	}
}

func optionalBool(req *structpb.Struct, key string) (*bool, error) {
	value, ok := field(req, key)
	if !ok {
		return nil, nil
	}
	kind, isBool := value.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: expected a boolean", key)
	}
	flag := kind.BoolValue
	return &flag, nil
}

// optionalTime reads an RFC 3339 timestamp
func optionalTime(req *structpb.Struct, key string) (*time.Time, error) {
	value, ok := field(req, key)
	if !ok {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value.GetStringValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
	return &parsed, nil
}

// parseOverrides reads the optional forecast parameter overrides of a BuildForecast request
func parseOverrides(req *structpb.Struct) (forecast.Overrides, error) {
	var overrides forecast.Overrides

	years, err := optionalNumber(req, "years_ahead")
	if err != nil {
		return overrides, err
	}
	if years != nil {
		yearsAhead := int(math.Max(domain.MinYearsAhead, math.Min(domain.MaxYearsAhead, *years)))
		overrides.YearsAhead = &yearsAhead
	}

	if overrides.GrowthRatePercent, err = optionalNumber(req, "growth_rate_percent"); err != nil {
		return overrides, err
	}

	if value, ok := field(req, "growth_rate_unit"); ok {
		unit := domain.RateUnit(strings.ToUpper(value.GetStringValue()))
		if unit != domain.RateUnitMonthly && unit != domain.RateUnitAnnual {
			return overrides, status.Errorf(codes.InvalidArgument, "invalid growth_rate_unit: %q", value.GetStringValue())
		}
		overrides.GrowthRateUnit = &unit
	}

	if overrides.AnnualInflationPercent, err = optionalNumber(req, "annual_inflation_percent"); err != nil {
		return overrides, err
	}
	if overrides.ContributionAmount, err = optionalDecimal(req, "contribution_amount"); err != nil {
		return overrides, err
	}
	if overrides.AnnualContributionGrowthPercent, err = optionalNumber(req, "annual_contribution_growth_percent"); err != nil {
		return overrides, err
	}
	if overrides.UseNominalValues, err = optionalBool(req, "use_nominal_values"); err != nil {
		return overrides, err
	}

	return overrides, nil
}

// parseBondSettings decodes the bond_settings document using the stored bond settings keys
func parseBondSettings(req *structpb.Struct) (*domain.BondSettings, error) {
	value, ok := field(req, "bond_settings")
	if !ok || value.GetStructValue() == nil {
		return nil, status.Error(codes.InvalidArgument, "bond_settings is required")
	}

	raw, err := value.GetStructValue().MarshalJSON()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid bond_settings: %v", err)
	}

	var settings domain.BondSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid bond_settings: %v", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid bond_settings: %v", err)
	}

	return &settings, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func pointsToList(points []domain.ForecastPoint) []interface{} {
	list := make([]interface{}, 0, len(points))
	for _, point := range points {
		entry := map[string]interface{}{
			"timestamp":     formatTime(point.Timestamp),
			"value":         point.Value().StringFixed(2),
			"nominal_value": point.NominalValue.StringFixed(2),
			"labor_income":  point.LaborIncome.StringFixed(2),
			"capital_gains": point.CapitalGains.StringFixed(2),
			"real_value":    nil,
		}
		if point.RealValue != nil {
			entry["real_value"] = point.RealValue.StringFixed(2)
		}
		list = append(list, entry)
	}
	return list
}

func warningsToList(warnings []domain.Warning) []interface{} {
	list := make([]interface{}, 0, len(warnings))
	for _, warning := range warnings {
		list = append(list, map[string]interface{}{
			"code":    string(warning.Code),
			"message": warning.Message,
			"value":   warning.Value,
		})
	}
	return list
}

func parametersToMap(params domain.ForecastParameters) map[string]interface{} {
	return map[string]interface{}{
		"years_ahead":                        params.YearsAhead,
		"growth_rate_percent":                params.GrowthRatePercent,
		"growth_rate_unit":                   string(params.GrowthRateUnit),
		"auto_growth_rate":                   params.AutoGrowthRate,
		"annual_inflation_percent":           params.AnnualInflationPercent,
		"contribution_amount":                params.ContributionAmount.StringFixed(2),
		"annual_contribution_growth_percent": params.AnnualContributionGrowthPercent,
		"use_nominal_values":                 params.UseNominalValues,
	}
}

func summaryToMap(s domain.ForecastSummary, formatted summary.Formatted) map[string]interface{} {
	return map[string]interface{}{
		"start_value":          s.StartValue.StringFixed(2),
		"total_contributions":  s.TotalContributions.StringFixed(2),
		"contribution_growth":  s.ContributionGrowth.StringFixed(2),
		"principal_growth":     s.PrincipalGrowth.StringFixed(2),
		"final_value":          s.FinalValue.StringFixed(2),
		"total_growth_percent": s.TotalGrowthPercent,
		"formatted": map[string]interface{}{
			"start_value":          formatted.StartValue,
			"total_contributions":  formatted.TotalContributions,
			"contribution_growth":  formatted.ContributionGrowth,
			"principal_growth":     formatted.PrincipalGrowth,
			"final_value":          formatted.FinalValue,
			"total_growth_percent": formatted.TotalGrowthPercent,
		},
	}
}

func reportToStruct(report *forecast.Report) (*structpb.Struct, error) {
	return newStruct(map[string]interface{}{
		"user_id":              report.UserID.String(),
		"currency":             report.Currency,
		"generated_at":         formatTime(report.GeneratedAt),
		"start_value":          report.StartValue.StringFixed(2),
		"monthly_rate_percent": report.Projection.MonthlyRatePercent,
		"parameters":           parametersToMap(report.Parameters),
		"monthly":              pointsToList(report.Projection.Monthly),
		"yearly":               pointsToList(report.Projection.Yearly),
		"warnings":             warningsToList(report.Projection.Warnings),
		"summary":              summaryToMap(report.Summary, report.Formatted),
	})
}

func valuationToStruct(valuation *domain.PortfolioValuation) (*structpb.Struct, error) {
	distribution := make(map[string]interface{}, len(valuation.Distribution))
	types := make([]string, 0, len(valuation.Distribution))
	for assetType, value := range valuation.Distribution {
		distribution[string(assetType)] = value.StringFixed(2)
		types = append(types, string(assetType))
	}
	sort.Strings(types)

	positions := make([]interface{}, 0, len(valuation.Positions))
	for _, position := range valuation.Positions {
		positions = append(positions, map[string]interface{}{
			"asset_id": position.AssetID.String(),
			"type":     string(position.Type),
			"price":    position.Price.String(),
			"value":    position.Value.StringFixed(2),

			"growth_percent": position.GrowthPercent,
		})
	}

	return newStruct(map[string]interface{}{
		"currency":     valuation.Currency,
		"total":        valuation.Total.StringFixed(2),
		"distribution": distribution,
		"asset_types":  stringsToList(types),
		"positions":    positions,
	})
}

// ratesToMap encodes a bond rate schedule with the stored interestRates keys
func ratesToMap(rates map[int]domain.BondRate) map[string]interface{} {
	out := make(map[string]interface{}, len(rates))
	for index, rate := range rates {
		out[strconv.Itoa(index)] = map[string]interface{}{"rate": rate.Rate}
	}
	return out
}

func stringsToList(values []string) []interface{} {
	list := make([]interface{}, 0, len(values))
	for _, value := range values {
		list = append(list, value)
	}
	return list
}

// newStruct wraps structpb.NewStruct, reporting unsupported values as internal errors
func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return out, nil
}
