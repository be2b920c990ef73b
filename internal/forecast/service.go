package forecast

import (
	"context"
	"errors"
	"time"

	"hotel-forecast/internal/dates"
	"hotel-forecast/internal/ratios"
	"hotel-forecast/internal/validation"
)

// Request is the single-forecast call at the outer boundary. Dates are DDMMYY strings.
type Request struct {
	StayDate          string        `json:"stay_date" validate:"required,ddmmyy" jsonschema:"stay date as DDMMYY, e.g. 150226"`
	TodayDate         string        `json:"today_date,omitempty" validate:"omitempty,ddmmyy" jsonschema:"as-of date as DDMMYY; defaults to today"`
	CurrentOccupancy  float64       `json:"current_occupancy" validate:"gte=0,lte=100" jsonschema:"rooms already booked as a percentage 0-100"`
	CurrentADR        *float64      `json:"current_adr,omitempty" validate:"omitempty,gt=0" jsonschema:"current average daily rate; required unless monthly_adr_budgets is given"`
	TargetOccupancy   *float64      `json:"target_occupancy,omitempty" validate:"omitempty,gte=0,lte=100" jsonschema:"target occupancy percentage; required unless monthly_targets is given"`
	MonthlyTargets    MonthlyValues `json:"monthly_targets,omitempty" validate:"omitempty,dive,gte=0,lte=100" jsonschema:"target occupancy per month keyed jan..dec"`
	MonthlyADRBudgets MonthlyValues `json:"monthly_adr_budgets,omitempty" validate:"omitempty,dive,gt=0" jsonschema:"ADR budget per month keyed jan..dec"`
	SensitivityFactor *float64      `json:"sensitivity_factor,omitempty" default:"0.5" jsonschema:"price sensitivity k: 0.3 conservative, 0.5 moderate, 0.8 aggressive"`
	EventLevel        string        `json:"event_level,omitempty" default:"none" validate:"oneof=none minor major" jsonschema:"none, minor or major"`
	TotalRooms        *int          `json:"total_rooms_available,omitempty" default:"100" validate:"gt=0" jsonschema:"rooms available for sale"`
}

// Validate applies defaults and checks every field, including rules that span fields
// or depend on cfg.
func (r *Request) Validate(ctx context.Context, cfg Config) error {
	var errs validation.Errors
	if err := validation.Struct(ctx, r); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}

	if k := r.sensitivity(); !cfg.SensitivityOptions.Allows(k) {
		errs = append(errs, validation.Errorf("sensitivity_factor", "ERR_ONEOF",
			"sensitivity_factor must be one of: %v, got %v", cfg.SensitivityOptions.Values(), k))
	}
	if r.TargetOccupancy == nil && len(r.MonthlyTargets) == 0 {
		errs = append(errs, validation.Errorf("target_occupancy", "ERR_REQUIRED", "target_occupancy or monthly_targets is required"))
	}
	if r.CurrentADR == nil && len(r.MonthlyADRBudgets) == 0 {
		errs = append(errs, validation.Errorf("current_adr", "ERR_REQUIRED", "current_adr or monthly_adr_budgets is required"))
	}
	if bad := r.MonthlyTargets.unknownKeys(); len(bad) > 0 {
		errs = append(errs, validation.Errorf("monthly_targets", "ERR_MONTH", "monthly_targets has unknown months %v (use jan..dec)", bad))
	}
	if bad := r.MonthlyADRBudgets.unknownKeys(); len(bad) > 0 {
		errs = append(errs, validation.Errorf("monthly_adr_budgets", "ERR_MONTH", "monthly_adr_budgets has unknown months %v (use jan..dec)", bad))
	}
	return errs.OrNil()
}

// Unset request fields take these; an explicit zero is validated as given.
const (
	defaultSensitivity = 0.5
	defaultRooms       = 100
)

func (r *Request) sensitivity() float64 {
	if r.SensitivityFactor == nil {
		return defaultSensitivity
	}
	return *r.SensitivityFactor
}

func (r *Request) rooms() int {
	if r.TotalRooms == nil {
		return defaultRooms
	}
	return *r.TotalRooms
}

// resolve turns a validated request into engine inputs. Monthly values win over
// single ones, as in bulk mode.
func (r *Request) resolve(now time.Time) (Input, PricingInput, error) {
	stay, err := dates.ParseCompact(r.StayDate, dates.LayoutDDMMYY)
	if err != nil {
		return Input{}, PricingInput{}, err
	}
	asOf := dates.Civil(now)
	if r.TodayDate != "" {
		if asOf, err = dates.ParseCompact(r.TodayDate, dates.LayoutDDMMYY); err != nil {
			return Input{}, PricingInput{}, err
		}
	}

	pin := PricingInput{SensitivityFactor: r.sensitivity(), EventLevel: EventLevel(r.EventLevel)}
	if len(r.MonthlyTargets) > 0 {
		if pin.TargetOccupancy, err = r.MonthlyTargets.For("monthly_targets", stay); err != nil {
			return Input{}, PricingInput{}, err
		}
	} else {
		pin.TargetOccupancy = *r.TargetOccupancy
	}
	if len(r.MonthlyADRBudgets) > 0 {
		if pin.CurrentPrice, err = r.MonthlyADRBudgets.For("monthly_adr_budgets", stay); err != nil {
			return Input{}, PricingInput{}, err
		}
	} else {
		pin.CurrentPrice = *r.CurrentADR
	}

	in := Input{
		StayDate:         stay,
		AsOf:             asOf,
		CurrentOccupancy: r.CurrentOccupancy,
		TotalRooms:       r.rooms(),
		EventLevel:       EventLevel(r.EventLevel),
	}
	return in, pin, nil
}

// Output is the combined forecast, pricing and warnings of one stay date.
type Output struct {
	Result
	Pricing
	Warnings []string `json:"warnings"`
}

// ForecastAndPrice validates req, forecasts occupancy, prices it and collects warnings.
// now supplies the as-of date when the request has none.
func ForecastAndPrice(ctx context.Context, req Request, table *ratios.Table, cfg Config, now time.Time) (Output, error) {
	if err := req.Validate(ctx, cfg); err != nil {
		return Output{}, err
	}
	in, pin, err := req.resolve(now)
	if err != nil {
		return Output{}, err
	}

	res, err := Occupancy(in, table, cfg)
	if err != nil {
		return Output{}, err
	}
	pricing := Price(res.ForecastOccupancyPct, pin, cfg)

	warnings := Warnings(in.CurrentOccupancy, in.EventLevel, res, pricing, cfg)
	if warnings == nil {
		warnings = []string{}
	}
	return Output{Result: res, Pricing: pricing, Warnings: warnings}, nil
}

// InputOptions lists the choices a caller can make.
type InputOptions struct {
	EventLevels        []EventLevel       `json:"event_levels"`
	SensitivityFactors SensitivityOptions `json:"sensitivity_factors"`
	DefaultPriceCap    float64            `json:"default_price_cap"`
	EventPremiums      EventPremiums      `json:"event_premiums"`
	MaxDaysOut         int                `json:"max_days_out"`
}

// Options returns the accepted categorical inputs under cfg.
func Options(cfg Config) InputOptions {
	return InputOptions{
		EventLevels:        EventLevels(),
		SensitivityFactors: cfg.SensitivityOptions,
		DefaultPriceCap:    cfg.DefaultPriceCap,
		EventPremiums:      cfg.EventPremiums,
		MaxDaysOut:         cfg.MaxDaysOut,
	}
}
