package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
	"github.com/shopspring/decimal"
)

// usdtDecimals is the scale of USDT amounts. Price fields are mirrored as
// human-readable decimals for API consumers that don't track raw units.
const usdtDecimals = 6

type stageResult struct {
	Number          uint8           `json:"number"`
	PricePerToken   uint128.Uint128 `json:"pricePerToken"`
	PriceUsdt       decimal.Decimal `json:"priceUsdt"`
	TokensAllocated uint128.Uint128 `json:"tokensAllocated"`
	TokensSold      uint128.Uint128 `json:"tokensSold"`
	TokensRemaining uint128.Uint128 `json:"tokensRemaining"`
	Active          bool            `json:"active"`
	Completed       bool            `json:"completed"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

func newStageResult(stage *entity.Stage) *stageResult {
	return &stageResult{
		Number:          stage.Number,
		PricePerToken:   stage.PricePerToken,
		PriceUsdt:       decimal.NewFromBigInt(stage.PricePerToken.Big(), -usdtDecimals),
		TokensAllocated: stage.TokensAllocated,
		TokensSold:      stage.TokensSold,
		TokensRemaining: stage.Remaining(),
		Active:          stage.Active,
		Completed:       stage.Completed,
		CompletedAt:     stage.CompletedAt,
	}
}

type getStageResponse = HttpResponse[stageResult]

func (h *HttpHandler) GetCurrentStage(ctx *fiber.Ctx) (err error) {
	stage, err := h.presaleDg.GetActiveStage(ctx.UserContext())
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(err, "no stage is currently active")
		}
		return errors.Wrap(err, "error during GetActiveStage")
	}

	resp := getStageResponse{Result: newStageResult(stage)}
	return errors.WithStack(ctx.JSON(resp))
}

type getStageRequest struct {
	Number uint8 `params:"number"`
}

func (r getStageRequest) Validate() error {
	if r.Number == 0 || r.Number > usecase.MaxStageNumber {
		return errs.WithPublicMessage(
			errors.Errorf("'number' must be between 1 and %d", usecase.MaxStageNumber),
			"validation error",
		)
	}
	return nil
}

func (h *HttpHandler) GetStage(ctx *fiber.Ctx) (err error) {
	var req getStageRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid stage number")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	stage, err := h.presaleDg.GetStage(ctx.UserContext(), req.Number)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.WithPublicMessage(err, "stage is not configured")
		}
		return errors.Wrap(err, "error during GetStage")
	}

	resp := getStageResponse{Result: newStageResult(stage)}
	return errors.WithStack(ctx.JSON(resp))
}

type getStagesResult struct {
	List []stageResult `json:"list"`
}

type getStagesResponse = HttpResponse[getStagesResult]

func (h *HttpHandler) GetStages(ctx *fiber.Ctx) (err error) {
	stages, err := h.presaleDg.GetStages(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetStages")
	}

	list := make([]stageResult, 0, len(stages))
	for i := range stages {
		list = append(list, *newStageResult(&stages[i]))
	}

	resp := getStagesResponse{Result: &getStagesResult{List: list}}
	return errors.WithStack(ctx.JSON(resp))
}
