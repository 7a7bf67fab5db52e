package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
)

type HttpHandler struct {
	usecase   *usecase.Usecase
	presaleDg datagateway.PresaleDataGateway
}

func New(usecase *usecase.Usecase, presaleDg datagateway.PresaleDataGateway) *HttpHandler {
	return &HttpHandler{
		usecase:   usecase,
		presaleDg: presaleDg,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// parseAddress resolves a request field into a normalized address, tagging
// the field name so validation errors point at the offending input.
func parseAddress(field, value string) (common.Address, error) {
	addr, err := common.ParseAddress(value)
	if err != nil {
		return "", errs.WithPublicMessage(err, "'"+field+"' is not a valid address")
	}
	return addr, nil
}

// parseAmount resolves a decimal string into a 128-bit unsigned amount.
func parseAmount(field, value string) (uint128.Uint128, error) {
	if value == "" {
		return uint128.Uint128{}, errs.NewPublicError("'" + field + "' is required")
	}
	amount, err := uint128.FromString(value)
	if err != nil {
		return uint128.Uint128{}, errs.WithPublicMessage(
			errors.Wrapf(errs.InvalidInput, "invalid amount %q", value),
			"'"+field+"' is not a valid unsigned amount",
		)
	}
	return amount, nil
}
