package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"patunganku_backend/internals/configs"
	donationRoutes "patunganku_backend/internals/features/donations/routes"
	"patunganku_backend/internals/features/donations/service"
	potRoutes "patunganku_backend/internals/features/pots/route"
	authMiddleware "patunganku_backend/internals/middlewares/auth"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== GROUPS =====================

	// PUBLIC → tanpa JWT (donatur guest + webhook provider)
	public := app.Group("/api/public")

	// PRIVATE (USER) → JWT wajib
	private := app.Group("/api/u",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	// ADMIN → JWT + admin claim
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret: configs.JWTSecret,
		}),
		authMiddleware.RequireAdmin(),
	)

	// ===================== GATEWAY =====================
	gateway := service.NewMidtransGateway(configs.MidtransServerKey, configs.MidtransUseProd)

	// ===================== FEATURES =====================
	log.Println("[INFO] Setting up PotRoutes...")
	potRoutes.PotRoutes(public, private, admin, db)

	log.Println("[INFO] Setting up DonationRoutes...")
	donationRoutes.DonationRoutes(public, private, admin, db, gateway, configs.MidtransServerKey)
}
