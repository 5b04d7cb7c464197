package dto

import "github.com/shopspring/decimal"

// CalculateQuoteRequest cuerpo de POST /api/quotes.
type CalculateQuoteRequest struct {
	EstimatedStudents     int              `json:"estimated_students"`
	PlanType              string           `json:"plan_type"`
	CustomPricePerStudent *decimal.Decimal `json:"custom_price_per_student"`
}

// RevenueSplitResponse reparto de un total entre plataforma y colegio.
// Los montos se presentan redondeados a la unidad menor (la única etapa con redondeo).
type RevenueSplitResponse struct {
	Total    decimal.Decimal `json:"total"`
	IASchool decimal.Decimal `json:"ia_school"`
	School   decimal.Decimal `json:"school"`
}

// QuoteResponse resultado de la cotización.
type QuoteResponse struct {
	PlanType          string               `json:"plan_type"`
	EstimatedStudents int                  `json:"estimated_students"`
	PricePerStudent   decimal.Decimal      `json:"price_per_student"`
	SetupFee          decimal.Decimal      `json:"setup_fee"`
	SetupTierName     string               `json:"setup_tier_name"`
	Monthly           RevenueSplitResponse `json:"monthly"`
	Annual            RevenueSplitResponse `json:"annual"`
}

// DefinePlanRequest cuerpo de PUT /api/plans/:type (defineOrReplace).
type DefinePlanRequest struct {
	Name                 string          `json:"name"`
	PricePerStudent      decimal.Decimal `json:"price_per_student"`
	IASchoolShare        decimal.Decimal `json:"ia_school_share"`
	SchoolShare          decimal.Decimal `json:"school_share"`
	AnnualDiscountMonths int             `json:"annual_discount_months"`
}

// DefineTierRequest cuerpo de PUT /api/setup-fee-tiers/:name (defineOrReplace).
type DefineTierRequest struct {
	MinStudents int             `json:"min_students"`
	MaxStudents *int            `json:"max_students"`
	Fee         decimal.Decimal `json:"fee"`
}
