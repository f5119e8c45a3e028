package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"patunganku_backend/internals/features/donations/service"
	helper "patunganku_backend/internals/helpers"
)

/* =======================================================================
   Webhook Midtrans — wrapper HTTP di atas WebhookProcessor.

   Kebijakan ack: selalu 2xx selama notifikasinya "dimengerti" (termasuk
   duplikat dan order_id yang tidak dikenal) supaya provider berhenti
   retry. Signature mismatch & body rusak = error beneran (401/400).
======================================================================= */

type WebhookController struct {
	Processor *service.WebhookProcessor
}

func NewWebhookController(processor *service.WebhookProcessor) *WebhookController {
	return &WebhookController{Processor: processor}
}

// GET /api/public/payments/midtrans/notification — tombol test Midtrans
func (ctrl *WebhookController) Ping(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("OK")
}

// POST /api/public/payments/midtrans/notification
func (ctrl *WebhookController) HandleMidtransNotification(c *fiber.Ctx) error {
	raw := c.Body()
	if len(raw) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "empty body")
	}

	result, err := ctrl.Processor.HandleNotification(c.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
		case errors.Is(err, service.ErrInvalidPayload):
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			// Tidak ada record lokal — ack supaya provider tidak retry selamanya.
			return helper.JsonOK(c, "ignored: donation not found", fiber.Map{
				"status": "ignored",
			})
		default:
			// Kegagalan internal non-fatal: ack + log, jangan picu retry storm.
			log.Println("[ERROR] Webhook processing failed:", err)
			return helper.JsonOK(c, "processed with warning", fiber.Map{
				"status": "warning",
			})
		}
	}

	return helper.JsonOK(c, "Midtrans webhook processed", result)
}
