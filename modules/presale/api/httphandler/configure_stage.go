package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
)

type configureStageRequest struct {
	Caller          string `json:"caller"`
	Number          uint8  `json:"number"`
	PricePerToken   string `json:"pricePerToken"`
	TokensAllocated string `json:"tokensAllocated"`
}

func (r configureStageRequest) Validate() error {
	var errList []error
	if r.Caller == "" {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if r.Number == 0 {
		errList = append(errList, errors.New("'number' must be positive"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type configureStageResult struct {
	Number uint8 `json:"number"`
}

type configureStageResponse = HttpResponse[configureStageResult]

func (h *HttpHandler) ConfigureStage(ctx *fiber.Ctx) (err error) {
	var req configureStageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		return errors.WithStack(err)
	}
	price, err := parseAmount("pricePerToken", req.PricePerToken)
	if err != nil {
		return errors.WithStack(err)
	}
	allocation, err := parseAmount("tokensAllocated", req.TokensAllocated)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.ConfigureStage(ctx.UserContext(), caller, usecase.ConfigureStageParams{
		Number:          req.Number,
		PricePerToken:   price,
		TokensAllocated: allocation,
	}); err != nil {
		return errors.Wrap(err, "error during ConfigureStage")
	}

	resp := configureStageResponse{
		Result: &configureStageResult{Number: req.Number},
	}
	return errors.WithStack(ctx.JSON(resp))
}
