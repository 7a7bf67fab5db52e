package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

type callerRequest struct {
	Caller string `json:"caller"`
}

func (r callerRequest) Validate() error {
	if r.Caller == "" {
		return errs.WithPublicMessage(errors.New("'caller' is required"), "validation error")
	}
	return nil
}

type pauseResult struct {
	Paused bool `json:"paused"`
}

type pauseResponse = HttpResponse[pauseResult]

func (h *HttpHandler) Pause(ctx *fiber.Ctx) (err error) {
	var req callerRequest
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

	if err := h.usecase.Pause(ctx.UserContext(), caller); err != nil {
		return errors.Wrap(err, "error during Pause")
	}
	return errors.WithStack(ctx.JSON(pauseResponse{Result: &pauseResult{Paused: true}}))
}

func (h *HttpHandler) Unpause(ctx *fiber.Ctx) (err error) {
	var req callerRequest
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

	if err := h.usecase.Unpause(ctx.UserContext(), caller); err != nil {
		return errors.Wrap(err, "error during Unpause")
	}
	return errors.WithStack(ctx.JSON(pauseResponse{Result: &pauseResult{Paused: false}}))
}

type setMaxPromoBpsRequest struct {
	Caller string `json:"caller"`
	Bps    uint16 `json:"bps"`
}

func (h *HttpHandler) SetMaxPromoBps(ctx *fiber.Ctx) (err error) {
	var req setMaxPromoBpsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if req.Caller == "" {
		return errs.NewPublicError("'caller' is required")
	}
	caller, err := parseAddress("caller", req.Caller)
	if err != nil {
		return errors.WithStack(err)
	}

	opHash, err := h.usecase.SetMaxPromoBps(ctx.UserContext(), caller, req.Bps)
	return respondOperation(ctx, opHash, err)
}

func (h *HttpHandler) Finalize(ctx *fiber.Ctx) (err error) {
	var req callerRequest
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

	opHash, err := h.usecase.Finalize(ctx.UserContext(), caller)
	return respondOperation(ctx, opHash, err)
}

type emergencyWithdrawRequest struct {
	Caller    string `json:"caller"`
	Token     string `json:"token"`
	Recipient string `json:"recipient"`
}

func (r emergencyWithdrawRequest) Validate() error {
	var errList []error
	if r.Caller == "" {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if r.Token == "" {
		errList = append(errList, errors.New("'token' is required"))
	}
	if r.Recipient == "" {
		errList = append(errList, errors.New("'recipient' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) EmergencyWithdraw(ctx *fiber.Ctx) (err error) {
	var req emergencyWithdrawRequest
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
	token, err := parseAddress("token", req.Token)
	if err != nil {
		return errors.WithStack(err)
	}
	recipient, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		return errors.WithStack(err)
	}

	opHash, err := h.usecase.EmergencyTokenWithdraw(ctx.UserContext(), caller, token, recipient)
	return respondOperation(ctx, opHash, err)
}
