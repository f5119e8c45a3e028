package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"patunganku_backend/internals/features/pots/controller"
)

// PotRoutes: public read, private create, admin status.
func PotRoutes(public, private, admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPotController(db)

	public.Get("/pots", ctrl.ListPots)
	public.Get("/pots/:slug", ctrl.GetPotBySlug)

	private.Post("/pots", ctrl.CreatePot)

	admin.Patch("/pots/:id/status", ctrl.UpdatePotStatus)
}
