package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type getInfoResult struct {
	Paused      bool            `json:"paused"`
	Finalized   bool            `json:"finalized"`
	MaxPromoBps uint16          `json:"maxPromoBps"`
	ActiveStage uint8           `json:"activeStage"`
	TotalUsdt   uint128.Uint128 `json:"totalUsdt"`
	TotalUsdtH  decimal.Decimal `json:"totalUsdtHuman"`
	TotalMagax  uint128.Uint128 `json:"totalMagax"`
}

type getInfoResponse = HttpResponse[getInfoResult]

func (h *HttpHandler) GetInfo(ctx *fiber.Ctx) (err error) {
	state, err := h.presaleDg.GetLedgerState(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetLedgerState")
	}

	resp := getInfoResponse{
		Result: &getInfoResult{
			Paused:      state.Paused,
			Finalized:   state.Finalized,
			MaxPromoBps: state.MaxPromoBps,
			ActiveStage: state.ActiveStage,
			TotalUsdt:   state.TotalUSDT,
			TotalUsdtH:  decimal.NewFromBigInt(state.TotalUSDT.Big(), -usdtDecimals),
			TotalMagax:  state.TotalMAGAX,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
