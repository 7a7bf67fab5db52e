package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger/slogx"
)

// statusFromKind maps the ledger error taxonomy to HTTP statuses.
// MultiSigPending is 202: the request was recorded and needs another
// confirmation, callers must resubmit rather than treat it as failure.
func statusFromKind(err error) (int, errs.ErrorKind, bool) {
	for _, kind := range []errs.ErrorKind{
		errs.Unauthorized,
		errs.InvalidInput,
		errs.StateConflict,
		errs.MultiSigPending,
		errs.AlreadyConfirmed,
		errs.NotFound,
		errs.Overflow,
	} {
		if errors.Is(err, kind) {
			switch kind {
			case errs.Unauthorized:
				return http.StatusForbidden, kind, true
			case errs.InvalidInput, errs.Overflow:
				return http.StatusBadRequest, kind, true
			case errs.MultiSigPending:
				return http.StatusAccepted, kind, true
			case errs.NotFound:
				return http.StatusNotFound, kind, true
			default:
				return http.StatusConflict, kind, true
			}
		}
	}
	return 0, "", false
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if status, kind, ok := statusFromKind(err); ok {
			return errors.WithStack(ctx.Status(status).JSON(map[string]any{
				"error": err.Error(),
				"code":  string(kind),
			}))
		}
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(http.StatusBadRequest).JSON(map[string]any{
				"error": e.Message(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(map[string]any{
			"error": "Internal Server Error",
		}))
	}
}
