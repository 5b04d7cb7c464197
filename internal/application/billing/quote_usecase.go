package billing

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/colegia/cobranza-api/internal/application/dto"
	"github.com/colegia/cobranza-api/internal/domain"
	domainbilling "github.com/colegia/cobranza-api/internal/domain/billing"
	"github.com/colegia/cobranza-api/internal/domain/entity"
	"github.com/colegia/cobranza-api/internal/domain/repository"
	"github.com/colegia/cobranza-api/pkg/money"
)

const catalogCacheKey = "catalog_snapshot"

// QuoteUseCase calcula cotizaciones sobre una foto del catálogo y administra
// el catálogo mismo (defineOrReplace de planes y tramos).
//
// La foto se cachea con TTL: el catálogo cambia poco y una cotización levemente
// desactualizada es tolerable; los saldos del libro mayor jamás pasan por aquí.
type QuoteUseCase struct {
	planRepo repository.SubscriptionPlanRepository
	tierRepo repository.SetupFeeTierRepository
	cache    *gocache.Cache
}

// NewQuoteUseCase construye el caso de uso. cacheTTL <= 0 desactiva el caché.
func NewQuoteUseCase(
	planRepo repository.SubscriptionPlanRepository,
	tierRepo repository.SetupFeeTierRepository,
	cacheTTL time.Duration,
) *QuoteUseCase {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &QuoteUseCase{planRepo: planRepo, tierRepo: tierRepo, cache: c}
}

// snapshot devuelve la foto del catálogo, del caché si sigue vigente.
func (uc *QuoteUseCase) snapshot() (*domainbilling.CatalogSnapshot, error) {
	if uc.cache != nil {
		if v, ok := uc.cache.Get(catalogCacheKey); ok {
			return v.(*domainbilling.CatalogSnapshot), nil
		}
	}
	plans, err := uc.planRepo.List()
	if err != nil {
		return nil, err
	}
	tiers, err := uc.tierRepo.List()
	if err != nil {
		return nil, err
	}
	byType := make(map[string]*entity.SubscriptionPlan, len(plans))
	for _, p := range plans {
		byType[p.PlanType] = p
	}
	snap := &domainbilling.CatalogSnapshot{
		Plans:    byType,
		Tiers:    tiers,
		LoadedAt: time.Now(),
	}
	if uc.cache != nil {
		uc.cache.Set(catalogCacheKey, snap, gocache.DefaultExpiration)
	}
	return snap, nil
}

// invalidate desecha la foto cacheada tras una escritura de catálogo.
func (uc *QuoteUseCase) invalidate() {
	if uc.cache != nil {
		uc.cache.Delete(catalogCacheKey)
	}
}

// CalculateQuote cotiza un plan para una cantidad estimada de estudiantes.
// Los montos de la respuesta se redondean a unidad menor (única etapa con redondeo).
func (uc *QuoteUseCase) CalculateQuote(ctx context.Context, in dto.CalculateQuoteRequest) (*dto.QuoteResponse, error) {
	snap, err := uc.snapshot()
	if err != nil {
		return nil, err
	}
	quote, err := domainbilling.CalculateQuote(snap, in.EstimatedStudents, in.PlanType, in.CustomPricePerStudent)
	if err != nil {
		return nil, err
	}
	return &dto.QuoteResponse{
		PlanType:          quote.PlanType,
		EstimatedStudents: quote.EstimatedStudents,
		PricePerStudent:   quote.PricePerStudent,
		SetupFee:          money.RoundMinorUnit(quote.SetupFee),
		SetupTierName:     quote.SetupTierName,
		Monthly:           toSplitResponse(quote.Monthly),
		Annual:            toSplitResponse(quote.Annual),
	}, nil
}

func toSplitResponse(s domainbilling.RevenueSplit) dto.RevenueSplitResponse {
	return dto.RevenueSplitResponse{
		Total:    money.RoundMinorUnit(s.Total),
		IASchool: money.RoundMinorUnit(s.IASchool),
		School:   money.RoundMinorUnit(s.School),
	}
}

// DefineOrReplacePlan crea o reemplaza un plan por su clave natural (plan_type).
// La validación de participaciones ocurre aquí, antes de persistir: nunca se
// delega a la semántica de upsert del almacén.
func (uc *QuoteUseCase) DefineOrReplacePlan(ctx context.Context, planType string, in dto.DefinePlanRequest) (*entity.SubscriptionPlan, error) {
	if planType == "" || in.PricePerStudent.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.AnnualDiscountMonths < 0 || in.AnnualDiscountMonths > 11 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	plan := &entity.SubscriptionPlan{
		PlanType:             planType,
		Name:                 in.Name,
		PricePerStudent:      in.PricePerStudent,
		IASchoolShare:        in.IASchoolShare,
		SchoolShare:          in.SchoolShare,
		AnnualDiscountMonths: in.AnnualDiscountMonths,
		UpdatedAt:            now,
	}
	if !plan.SharesValid() {
		return nil, domain.ErrInvalidShares
	}
	// Al reemplazar se conservan la identidad y la fecha de creación originales.
	current, err := uc.planRepo.GetByType(planType)
	if err != nil {
		return nil, err
	}
	if current != nil {
		plan.ID = current.ID
		plan.CreatedAt = current.CreatedAt
	} else {
		plan.CreatedAt = now
	}
	if err := uc.planRepo.Upsert(plan); err != nil {
		return nil, err
	}
	uc.invalidate()
	return plan, nil
}

// DefineOrReplaceTier crea o reemplaza un tramo de instalación por nombre.
// Valida que el tramo resultante no se superponga con los demás.
func (uc *QuoteUseCase) DefineOrReplaceTier(ctx context.Context, name string, in dto.DefineTierRequest) (*entity.SetupFeeTier, error) {
	if name == "" || in.MinStudents < 0 || in.Fee.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxStudents != nil && *in.MaxStudents < in.MinStudents {
		return nil, domain.ErrInvalidInput
	}
	tier := &entity.SetupFeeTier{
		Name:        name,
		MinStudents: in.MinStudents,
		MaxStudents: in.MaxStudents,
		Fee:         in.Fee,
		UpdatedAt:   time.Now(),
	}

	existing, err := uc.tierRepo.List()
	if err != nil {
		return nil, err
	}
	candidate := make([]*entity.SetupFeeTier, 0, len(existing)+1)
	for _, t := range existing {
		if t.Name == name {
			continue // el tramo reemplazado no cuenta para la superposición
		}
		candidate = append(candidate, t)
	}
	candidate = append(candidate, tier)
	if err := domainbilling.ValidateTiers(candidate); err != nil {
		return nil, err
	}

	if err := uc.tierRepo.Upsert(tier); err != nil {
		return nil, err
	}
	uc.invalidate()
	return tier, nil
}
