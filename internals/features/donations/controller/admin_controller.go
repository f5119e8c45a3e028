package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"patunganku_backend/internals/features/donations/service"
	helper "patunganku_backend/internals/helpers"
)

/* =======================================================================
   Admin — trigger rekonsiliasi (dipanggil cron eksternal, bukan timer
   internal) dan refund eksplisit.
======================================================================= */

type AdminController struct {
	Reconciler *service.Reconciler
	Settlement *service.Settlement
	Store      service.LedgerStore
}

func NewAdminController(reconciler *service.Reconciler, settlement *service.Settlement, store service.LedgerStore) *AdminController {
	return &AdminController{Reconciler: reconciler, Settlement: settlement, Store: store}
}

// POST /api/a/reconciliation/run
func (ctrl *AdminController) RunReconciliation(c *fiber.Ctx) error {
	report, err := ctrl.Reconciler.RunOnce(c.Context())
	if err != nil {
		log.Println("[ERROR] Reconciliation run failed:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Reconciliation selesai.", report)
}

// POST /api/a/donations/:id/refund — refund eksplisit, hanya dari completed.
func (ctrl *AdminController) RefundDonation(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	donation, err := ctrl.Store.GetDonation(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Donasi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	applied, err := ctrl.Settlement.Apply(c.Context(), donation, &service.StatusResult{
		Outcome:   service.OutcomeRefund,
		RawStatus: "manual_refund",
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if !applied {
		return helper.JsonError(c, fiber.StatusConflict, "Donasi tidak dalam status completed")
	}

	return helper.JsonUpdated(c, "Donasi di-refund.", fiber.Map{
		"donation_id": donation.DonationID,
		"order_id":    donation.DonationOrderID,
	})
}
