package httphandler

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

type getOperationRequest struct {
	Hash   string `params:"hash"`
	Caller string `query:"caller"`
}

func (r getOperationRequest) Validate() error {
	if r.Hash == "" {
		return errs.WithPublicMessage(errors.New("'hash' is required"), "validation error")
	}
	return nil
}

type getOperationResult struct {
	OpHash        string          `json:"opHash"`
	Kind          string          `json:"kind"`
	Params        json.RawMessage `json:"params"`
	Confirmations int             `json:"confirmations"`
	Executed      bool            `json:"executed"`
	CreatedAt     time.Time       `json:"createdAt"`

	// set only when the 'caller' query parameter is present
	ConfirmedByCaller *bool `json:"confirmedByCaller,omitempty"`
}

type getOperationResponse = HttpResponse[getOperationResult]

func (h *HttpHandler) GetOperation(ctx *fiber.Ctx) (err error) {
	var req getOperationRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid path parameters")
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid query parameters")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	op, err := h.presaleDg.GetPendingOperation(ctx.UserContext(), req.Hash)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(err, "unknown operation hash")
		}
		return errors.Wrap(err, "error during GetPendingOperation")
	}

	result := getOperationResult{
		OpHash:        op.OpHash,
		Kind:          op.Kind,
		Params:        op.Params,
		Confirmations: len(op.Confirmers),
		Executed:      op.Executed,
		CreatedAt:     op.CreatedAt,
	}
	if req.Caller != "" {
		caller, err := parseAddress("caller", req.Caller)
		if err != nil {
			return errors.WithStack(err)
		}
		confirmed := op.Confirmed(caller)
		result.ConfirmedByCaller = &confirmed
	}

	resp := getOperationResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
