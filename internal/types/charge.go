package types

import (
	ierr "github.com/boxbilling/bxb-sub002/internal/errors"
	"github.com/samber/lo"
)

// ChargeModel is the pricing model applied to a charge's aggregated usage
type ChargeModel string

const (
	ChargeModelStandard            ChargeModel = "STANDARD"
	ChargeModelGraduated           ChargeModel = "GRADUATED"
	ChargeModelVolume              ChargeModel = "VOLUME"
	ChargeModelPackage             ChargeModel = "PACKAGE"
	ChargeModelPercentage          ChargeModel = "PERCENTAGE"
	ChargeModelGraduatedPercentage ChargeModel = "GRADUATED_PERCENTAGE"
	ChargeModelDynamic             ChargeModel = "DYNAMIC"
	ChargeModelCustom              ChargeModel = "CUSTOM"
)

func (m ChargeModel) Validate() error {
	allowedValues := []string{
		string(ChargeModelStandard),
		string(ChargeModelGraduated),
		string(ChargeModelVolume),
		string(ChargeModelPackage),
		string(ChargeModelPercentage),
		string(ChargeModelGraduatedPercentage),
		string(ChargeModelDynamic),
		string(ChargeModelCustom),
	}
	if !lo.Contains(allowedValues, string(m)) {
		return ierr.NewError("invalid charge model").
			WithHint("Invalid charge model").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"model":   m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FeeType is the kind of fee a billing run produces
type FeeType string

const (
	FeeTypeCharge       FeeType = "CHARGE"
	FeeTypeSubscription FeeType = "SUBSCRIPTION"
	FeeTypeCommitment   FeeType = "COMMITMENT"
)

// CommitmentType identifies the kind of commitment attached to a plan
type CommitmentType string

const (
	CommitmentTypeMinimum CommitmentType = "minimum_commitment"
)

// DefaultCommitmentDescription is used for true-up fees when the commitment
// carries no invoice display name
const DefaultCommitmentDescription = "Minimum commitment true-up"
