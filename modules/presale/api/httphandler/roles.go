package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
)

type roleRequest struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Address string `json:"address"`
}

func (r roleRequest) Validate() error {
	var errList []error
	if r.Caller == "" {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if !entity.Role(r.Role).Valid() {
		errList = append(errList, errors.Errorf("'role' %q is not a known role", r.Role))
	}
	if r.Address == "" {
		errList = append(errList, errors.New("'address' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type roleResult struct {
	Role    string `json:"role"`
	Address string `json:"address"`
	Granted bool   `json:"granted"`
}

type roleResponse = HttpResponse[roleResult]

func (h *HttpHandler) GrantRole(ctx *fiber.Ctx) (err error) {
	var req roleRequest
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
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.GrantRole(ctx.UserContext(), caller, entity.Role(req.Role), addr); err != nil {
		return errors.Wrap(err, "error during GrantRole")
	}

	resp := roleResponse{
		Result: &roleResult{Role: req.Role, Address: addr.String(), Granted: true},
	}
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) RevokeRole(ctx *fiber.Ctx) (err error) {
	var req roleRequest
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
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.usecase.RevokeRole(ctx.UserContext(), caller, entity.Role(req.Role), addr); err != nil {
		return errors.Wrap(err, "error during RevokeRole")
	}

	resp := roleResponse{
		Result: &roleResult{Role: req.Role, Address: addr.String(), Granted: false},
	}
	return errors.WithStack(ctx.JSON(resp))
}
