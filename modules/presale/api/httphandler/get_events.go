package httphandler

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

type getEventsRequest struct {
	Kind   string `query:"kind"`
	Actor  string `query:"actor"`
	Offset int32  `query:"offset"`
	Limit  int32  `query:"limit"`
}

func (r getEventsRequest) Validate() error {
	var errList []error
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	if r.Limit < 0 || r.Limit > maxEventsLimit {
		errList = append(errList, errors.Errorf("'limit' must be between 0 and %d", maxEventsLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type eventResult struct {
	Seq       int64           `json:"seq"`
	Kind      string          `json:"kind"`
	Actor     string          `json:"actor"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type getEventsResult struct {
	List []eventResult `json:"list"`
}

type getEventsResponse = HttpResponse[getEventsResult]

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) (err error) {
	var req getEventsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid query parameters")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if req.Limit == 0 {
		req.Limit = defaultEventsLimit
	}

	var actor common.Address
	if req.Actor != "" {
		if actor, err = parseAddress("actor", req.Actor); err != nil {
			return errors.WithStack(err)
		}
	}

	events, err := h.presaleDg.GetEvents(ctx.UserContext(), datagateway.GetEventsParams{
		Kind:   req.Kind,
		Actor:  actor,
		Offset: req.Offset,
		Limit:  req.Limit,
	})
	if err != nil {
		return errors.Wrap(err, "error during GetEvents")
	}

	list := make([]eventResult, 0, len(events))
	for _, event := range events {
		list = append(list, eventResult{
			Seq:       event.Seq,
			Kind:      event.Kind,
			Actor:     event.Actor.String(),
			Payload:   event.Payload,
			CreatedAt: event.CreatedAt,
		})
	}

	resp := getEventsResponse{Result: &getEventsResult{List: list}}
	return errors.WithStack(ctx.JSON(resp))
}
