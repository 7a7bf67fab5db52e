package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
)

type activateStageRequest struct {
	Number uint8  `params:"number"`
	Caller string `json:"caller"`
}

func (r activateStageRequest) Validate() error {
	var errList []error
	if r.Caller == "" {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if r.Number == 0 || r.Number > usecase.MaxStageNumber {
		errList = append(errList, errors.Errorf("'number' must be between 1 and %d", usecase.MaxStageNumber))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type activateStageResult struct {
	ActiveStage uint8 `json:"activeStage"`
}

type activateStageResponse = HttpResponse[activateStageResult]

func (h *HttpHandler) ActivateStage(ctx *fiber.Ctx) (err error) {
	var req activateStageRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid stage number")
	}
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

	if err := h.usecase.ActivateStage(ctx.UserContext(), caller, req.Number); err != nil {
		return errors.Wrap(err, "error during ActivateStage")
	}

	resp := activateStageResponse{
		Result: &activateStageResult{ActiveStage: req.Number},
	}
	return errors.WithStack(ctx.JSON(resp))
}
