package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
)

const (
	defaultReceiptsLimit = 100
	maxReceiptsLimit     = 1000
)

type getReceiptsRequest struct {
	Buyer  string `params:"buyer"`
	Offset int32  `query:"offset"`
	Limit  int32  `query:"limit"`
}

func (r getReceiptsRequest) Validate() error {
	var errList []error
	if r.Buyer == "" {
		errList = append(errList, errors.New("'buyer' is required"))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	if r.Limit < 0 || r.Limit > maxReceiptsLimit {
		errList = append(errList, errors.Errorf("'limit' must be between 0 and %d", maxReceiptsLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getReceiptsResult struct {
	List   []receiptResult `json:"list"`
	Total  int64           `json:"total"`
	Offset int32           `json:"offset"`
	Limit  int32           `json:"limit"`
}

type getReceiptsResponse = HttpResponse[getReceiptsResult]

func (h *HttpHandler) GetReceipts(ctx *fiber.Ctx) (err error) {
	var req getReceiptsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid path parameters")
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid query parameters")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if req.Limit == 0 {
		req.Limit = defaultReceiptsLimit
	}

	buyer, err := parseAddress("buyer", req.Buyer)
	if err != nil {
		return errors.WithStack(err)
	}

	// A window past the end of the buyer's history is a valid empty page.
	receipts, err := h.presaleDg.GetReceiptsPaginated(ctx.UserContext(), datagateway.GetReceiptsPaginatedParams{
		Buyer:  buyer,
		Offset: req.Offset,
		Limit:  req.Limit,
	})
	if err != nil {
		return errors.Wrap(err, "error during GetReceiptsPaginated")
	}
	total, err := h.presaleDg.CountReceipts(ctx.UserContext(), buyer)
	if err != nil {
		return errors.Wrap(err, "error during CountReceipts")
	}

	list := make([]receiptResult, 0, len(receipts))
	for i := range receipts {
		list = append(list, *newReceiptResult(&receipts[i]))
	}

	resp := getReceiptsResponse{
		Result: &getReceiptsResult{
			List:   list,
			Total:  total,
			Offset: req.Offset,
			Limit:  req.Limit,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
