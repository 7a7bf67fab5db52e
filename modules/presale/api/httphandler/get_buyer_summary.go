package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

type getBuyerSummaryRequest struct {
	Buyer string `params:"buyer"`
}

type getBuyerSummaryResult struct {
	Buyer         string          `json:"buyer"`
	PurchaseCount int64           `json:"purchaseCount"`
	TotalUsdt     uint128.Uint128 `json:"totalUsdt"`
	TotalMagax    uint128.Uint128 `json:"totalMagax"`
	Referrer      *string         `json:"referrer"`
}

type getBuyerSummaryResponse = HttpResponse[getBuyerSummaryResult]

func (h *HttpHandler) GetBuyerSummary(ctx *fiber.Ctx) (err error) {
	var req getBuyerSummaryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid path parameters")
	}
	buyer, err := parseAddress("buyer", req.Buyer)
	if err != nil {
		return errors.WithStack(err)
	}

	summary, err := h.presaleDg.GetBuyerSummary(ctx.UserContext(), buyer)
	if err != nil {
		return errors.Wrap(err, "error during GetBuyerSummary")
	}

	result := getBuyerSummaryResult{
		Buyer:         summary.Buyer.String(),
		PurchaseCount: summary.PurchaseCount,
		TotalUsdt:     summary.TotalUSDT,
		TotalMagax:    summary.TotalMAGAX,
	}
	if !summary.Referrer.IsZero() {
		referrer := summary.Referrer.String()
		result.Referrer = &referrer
	}

	resp := getBuyerSummaryResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
