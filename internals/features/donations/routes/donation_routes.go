package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"patunganku_backend/internals/configs"
	"patunganku_backend/internals/features/donations/controller"
	"patunganku_backend/internals/features/donations/service"
	"patunganku_backend/internals/middlewares"
)

// DonationRoutes merangkai core services + endpoint donasi, webhook, dan admin.
func DonationRoutes(public, private, admin fiber.Router, db *gorm.DB, gateway service.GatewayClient, serverKey string) {
	store := service.NewGormLedgerStore(db)
	settlement := service.NewSettlement(store, service.LogNotifier{})
	initiator := service.NewInitiator(store, gateway)
	processor := service.NewWebhookProcessor(store, settlement, serverKey)
	reconciler := service.NewReconciler(store, gateway, settlement)
	reconciler.StaleAfter = configs.GetEnvDuration("RECONCILE_STALE_AFTER", time.Hour)

	donationCtrl := controller.NewDonationController(db, initiator)
	webhookCtrl := controller.NewWebhookController(processor)
	adminCtrl := controller.NewAdminController(reconciler, settlement, store)

	// publik — donatur & provider
	public.Post("/pots/:slug/donations", middlewares.DonationRateLimiter(), donationCtrl.CreateDonation)
	public.Get("/pots/:slug/donations", donationCtrl.GetDonationsByPotSlug)
	public.Get("/payments/midtrans/notification", webhookCtrl.Ping)
	public.Post("/payments/midtrans/notification", webhookCtrl.HandleMidtransNotification)

	// login
	private.Get("/donations/:id", donationCtrl.GetDonationByID)

	// admin — cron eksternal manggil run; refund eksplisit
	admin.Post("/reconciliation/run", adminCtrl.RunReconciliation)
	admin.Post("/donations/:id/refund", adminCtrl.RefundDonation)
}
