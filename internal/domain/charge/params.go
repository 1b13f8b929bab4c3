package charge

import (
	"sort"

	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/boxbilling/bxb-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// Params is the tagged union of validated pricing parameters, one variant
// per charge model. Decoding happens once at the data boundary so the
// calculators can switch exhaustively without re-checking configuration.
type Params interface {
	ChargeModel() types.ChargeModel
}

type StandardParams struct {
	UnitAmount decimal.Decimal
	// MinAmount / MaxAmount clamp the computed amount. Zero means unset.
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

func (StandardParams) ChargeModel() types.ChargeModel { return types.ChargeModelStandard }

type GraduatedParams struct {
	Tiers []Tier
}

func (GraduatedParams) ChargeModel() types.ChargeModel { return types.ChargeModelGraduated }

type VolumeParams struct {
	Tiers []Tier
}

func (VolumeParams) ChargeModel() types.ChargeModel { return types.ChargeModelVolume }

type PackageParams struct {
	// Amount is the price of one whole bundle
	Amount decimal.Decimal
	// PackageSize is the bundle size; usage rounds up to the next bundle
	PackageSize decimal.Decimal
}

func (PackageParams) ChargeModel() types.ChargeModel { return types.ChargeModelPackage }

type PercentageParams struct {
	// Rate is the percentage applied to the aggregated monetary base
	Rate decimal.Decimal
	// PerEventAmount is the optional fixed fee added per matched event
	PerEventAmount decimal.Decimal
}

func (PercentageParams) ChargeModel() types.ChargeModel { return types.ChargeModelPercentage }

type GraduatedPercentageParams struct {
	Tiers []Tier
}

func (GraduatedPercentageParams) ChargeModel() types.ChargeModel {
	return types.ChargeModelGraduatedPercentage
}

type DynamicParams struct {
	// PricePropertyKey is the event property holding each event's unit price
	PricePropertyKey string
}

func (DynamicParams) ChargeModel() types.ChargeModel { return types.ChargeModelDynamic }

type CustomParams struct {
	Amount decimal.Decimal
}

func (CustomParams) ChargeModel() types.ChargeModel { return types.ChargeModelCustom }

// DefaultDynamicPriceKey is used when a DYNAMIC charge does not name the
// event property carrying the per event unit price
const DefaultDynamicPriceKey = "unit_amount"

// Params decodes the charge's properties into the validated variant for its
// model. A charge row carrying an unknown model tag returns ErrValidation;
// callers assembling invoices treat that as "contributes nothing".
func (c *Charge) Params() (Params, error) {
	return BuildParams(c.ChargeModel, c.Properties)
}

// FilterParams decodes the effective properties of one charge filter segment
func (c *Charge) FilterParams(f *Filter) (Params, error) {
	return BuildParams(c.ChargeModel, c.EffectiveProperties(f))
}

// BuildParams validates and decodes raw properties for a charge model
func BuildParams(model types.ChargeModel, p Properties) (Params, error) {
	switch model {
	case types.ChargeModelStandard:
		return StandardParams{
			UnitAmount: p.Amount,
			MinAmount:  p.MinAmount,
			MaxAmount:  p.MaxAmount,
		}, nil

	case types.ChargeModelGraduated:
		tiers, err := sortedTiers(p.Tiers)
		if err != nil {
			return nil, err
		}
		return GraduatedParams{Tiers: tiers}, nil

	case types.ChargeModelVolume:
		tiers, err := sortedTiers(p.Tiers)
		if err != nil {
			return nil, err
		}
		return VolumeParams{Tiers: tiers}, nil

	case types.ChargeModelPackage:
		if p.PackageSize.LessThanOrEqual(decimal.Zero) {
			return nil, ierr.NewError("package size must be greater than 0").
				WithHint("Package charges require a positive package size").
				Mark(ierr.ErrValidation)
		}
		return PackageParams{Amount: p.Amount, PackageSize: p.PackageSize}, nil

	case types.ChargeModelPercentage:
		return PercentageParams{Rate: p.Rate, PerEventAmount: p.PerEventAmount}, nil

	case types.ChargeModelGraduatedPercentage:
		tiers, err := sortedTiers(p.Tiers)
		if err != nil {
			return nil, err
		}
		return GraduatedPercentageParams{Tiers: tiers}, nil

	case types.ChargeModelDynamic:
		key := p.PricePropertyKey
		if key == "" {
			key = DefaultDynamicPriceKey
		}
		return DynamicParams{PricePropertyKey: key}, nil

	case types.ChargeModelCustom:
		return CustomParams{Amount: p.Amount}, nil

	default:
		return nil, ierr.NewError("unknown charge model").
			WithHint("Unknown charge model").
			WithReportableDetails(map[string]any{
				"model": model,
			}).
			Mark(ierr.ErrValidation)
	}
}

// sortedTiers orders tiers by range and checks the schedule shape: at least
// one tier, and only the last tier open ended.
func sortedTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return nil, ierr.NewError("no tiers configured").
			WithHint("Tiered charges require at least one tier").
			Mark(ierr.ErrValidation)
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].upperBound() < sorted[j].upperBound()
	})

	for i, tier := range sorted {
		if tier.ToValue == nil && i != len(sorted)-1 {
			return nil, ierr.NewError("only the last tier may be open ended").
				WithHint("Only the last tier may omit to_value").
				Mark(ierr.ErrValidation)
		}
	}

	return sorted, nil
}
