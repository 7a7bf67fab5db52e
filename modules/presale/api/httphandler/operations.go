package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

const (
	operationStatusPending  = "pending"
	operationStatusExecuted = "executed"
)

type operationResult struct {
	OpHash string `json:"opHash"`
	Status string `json:"status"`
}

type operationResponse = HttpResponse[operationResult]

// respondOperation renders the outcome of a multi-sig gated call. A pending
// outcome is not a failure to the HTTP client: it answers 202 Accepted with
// the operation hash the second signer needs to confirm against.
func respondOperation(ctx *fiber.Ctx, opHash string, err error) error {
	if err != nil {
		if errors.Is(err, errs.MultiSigPending) {
			return errors.WithStack(ctx.Status(fiber.StatusAccepted).JSON(operationResponse{
				Result: &operationResult{OpHash: opHash, Status: operationStatusPending},
			}))
		}
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(operationResponse{
		Result: &operationResult{OpHash: opHash, Status: operationStatusExecuted},
	}))
}
