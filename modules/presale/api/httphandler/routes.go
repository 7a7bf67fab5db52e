package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/presale/v1")

	r.Post("/stages", h.ConfigureStage)
	r.Post("/stages/:number/activate", h.ActivateStage)
	r.Get("/stages/current", h.GetCurrentStage)
	r.Get("/stages/:number", h.GetStage)
	r.Get("/stages", h.GetStages)

	r.Post("/purchases", h.RecordPurchase)
	r.Post("/purchases/referral", h.RecordPurchaseWithReferral)
	r.Post("/purchases/promo", h.RecordPurchaseWithPromo)

	r.Get("/receipts/:buyer", h.GetReceipts)
	r.Get("/buyers/:buyer", h.GetBuyerSummary)
	r.Get("/operations/:hash", h.GetOperation)
	r.Get("/info", h.GetInfo)
	r.Get("/events", h.GetEvents)

	r.Post("/admin/pause", h.Pause)
	r.Post("/admin/unpause", h.Unpause)
	r.Post("/admin/max-promo-bps", h.SetMaxPromoBps)
	r.Post("/admin/finalize", h.Finalize)
	r.Post("/admin/emergency-withdraw", h.EmergencyWithdraw)
	r.Post("/admin/roles/grant", h.GrantRole)
	r.Post("/admin/roles/revoke", h.RevokeRole)

	return nil
}
