package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
)

type recordPurchaseRequest struct {
	Caller      string `json:"caller"`
	Buyer       string `json:"buyer"`
	UsdtAmount  string `json:"usdtAmount"`
	MagaxAmount string `json:"magaxAmount"`

	// referral purchases only
	Referrer string `json:"referrer"`

	// promo purchases only
	PromoBps uint16 `json:"promoBps"`
}

func (r recordPurchaseRequest) Validate() error {
	var errList []error
	if r.Caller == "" {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if r.Buyer == "" {
		errList = append(errList, errors.New("'buyer' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r recordPurchaseRequest) parse() (params purchaseParams, err error) {
	params.Caller, err = parseAddress("caller", r.Caller)
	if err != nil {
		return purchaseParams{}, errors.WithStack(err)
	}
	buyer, err := parseAddress("buyer", r.Buyer)
	if err != nil {
		return purchaseParams{}, errors.WithStack(err)
	}
	usdt, err := parseAmount("usdtAmount", r.UsdtAmount)
	if err != nil {
		return purchaseParams{}, errors.WithStack(err)
	}
	magax, err := parseAmount("magaxAmount", r.MagaxAmount)
	if err != nil {
		return purchaseParams{}, errors.WithStack(err)
	}
	params.Purchase = usecase.RecordPurchaseParams{
		Buyer:       buyer,
		UsdtAmount:  usdt,
		MagaxAmount: magax,
	}
	return params, nil
}

type purchaseParams struct {
	Caller   common.Address
	Purchase usecase.RecordPurchaseParams
}

type receiptResult struct {
	Buyer          string          `json:"buyer"`
	UsdtPaid       uint128.Uint128 `json:"usdtPaid"`
	MagaxAllocated uint128.Uint128 `json:"magaxAllocated"`
	StageNumber    uint8           `json:"stageNumber"`
	Timestamp      time.Time       `json:"timestamp"`
}

type recordPurchaseResponse = HttpResponse[receiptResult]

func newReceiptResult(receipt *entity.Receipt) *receiptResult {
	return &receiptResult{
		Buyer:          receipt.Buyer.String(),
		UsdtPaid:       receipt.UsdtPaid,
		MagaxAllocated: receipt.MagaxAllocated,
		StageNumber:    receipt.StageNumber,
		Timestamp:      receipt.Timestamp,
	}
}

func (h *HttpHandler) RecordPurchase(ctx *fiber.Ctx) (err error) {
	var req recordPurchaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	params, err := req.parse()
	if err != nil {
		return errors.WithStack(err)
	}

	receipt, err := h.usecase.RecordPurchase(ctx.UserContext(), params.Caller, params.Purchase)
	if err != nil {
		return errors.Wrap(err, "error during RecordPurchase")
	}

	resp := recordPurchaseResponse{Result: newReceiptResult(receipt)}
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) RecordPurchaseWithReferral(ctx *fiber.Ctx) (err error) {
	var req recordPurchaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	params, err := req.parse()
	if err != nil {
		return errors.WithStack(err)
	}
	referrer, err := parseAddress("referrer", req.Referrer)
	if err != nil {
		return errors.WithStack(err)
	}

	receipt, err := h.usecase.RecordPurchaseWithReferral(ctx.UserContext(), params.Caller, params.Purchase, referrer)
	if err != nil {
		return errors.Wrap(err, "error during RecordPurchaseWithReferral")
	}

	resp := recordPurchaseResponse{Result: newReceiptResult(receipt)}
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) RecordPurchaseWithPromo(ctx *fiber.Ctx) (err error) {
	var req recordPurchaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	params, err := req.parse()
	if err != nil {
		return errors.WithStack(err)
	}

	receipt, err := h.usecase.RecordPurchaseWithPromo(ctx.UserContext(), params.Caller, params.Purchase, req.PromoBps)
	if err != nil {
		return errors.Wrap(err, "error during RecordPurchaseWithPromo")
	}

	resp := recordPurchaseResponse{Result: newReceiptResult(receipt)}
	return errors.WithStack(ctx.JSON(resp))
}
