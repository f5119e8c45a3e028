package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"patunganku_backend/internals/features/donations/dto"
	"patunganku_backend/internals/features/donations/model"
	"patunganku_backend/internals/features/donations/service"
	potModel "patunganku_backend/internals/features/pots/model"
	helper "patunganku_backend/internals/helpers"
)

type DonationController struct {
	DB        *gorm.DB
	Initiator *service.Initiator
}

func NewDonationController(db *gorm.DB, initiator *service.Initiator) *DonationController {
	return &DonationController{DB: db, Initiator: initiator}
}

/* =======================================================================
   Create — inisiasi donasi + Snap checkout, guest maupun login
======================================================================= */

// POST /api/public/pots/:slug/donations
func (ctrl *DonationController) CreateDonation(c *fiber.Ctx) error {
	var body dto.CreateDonationRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.Validate(); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	slug := c.Params("slug")
	if slug == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Slug pot tidak boleh kosong")
	}

	var pot potModel.Pot
	if err := ctrl.DB.WithContext(c.Context()).First(&pot, "pot_slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Pot tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	// user opsional (guest boleh)
	var userIDPtr *uuid.UUID
	if s, ok := c.Locals("user_id").(string); ok && s != "" {
		if id, err := uuid.Parse(s); err == nil {
			userIDPtr = &id
		}
	}

	result, err := ctrl.Initiator.Initiate(c.Context(), service.InitiateInput{
		PotID:      pot.PotID,
		AmountIDR:  body.DonationAmountIDR,
		DonorName:  strings.TrimSpace(body.DonationName),
		DonorEmail: body.DonationEmail,
		Message:    body.DonationMessage,
		UserID:     userIDPtr,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "Pot tidak ditemukan")
		case errors.Is(err, service.ErrInvalidState):
			return helper.JsonError(c, fiber.StatusConflict, "Pot tidak menerima donasi baru")
		case errors.Is(err, service.ErrGatewayUnavailable):
			return helper.JsonError(c, fiber.StatusServiceUnavailable, "Payment gateway sedang tidak bisa dihubungi. Coba lagi.")
		default:
			log.Println("[ERROR] Initiate donation failed:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat donasi")
		}
	}

	return helper.JsonCreated(c, "Donasi berhasil dibuat. Silakan lanjutkan pembayaran.", result)
}

/* =======================================================================
   Query (ringkas)
======================================================================= */

// GET /api/public/pots/:slug/donations — donasi completed saja (tampilan publik)
func (ctrl *DonationController) GetDonationsByPotSlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Slug pot tidak boleh kosong")
	}

	var pot potModel.Pot
	if err := ctrl.DB.WithContext(c.Context()).First(&pot, "pot_slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Pot tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	paging := helper.ResolvePaging(c, 20, 100)

	db := ctrl.DB.WithContext(c.Context()).Model(&model.Donation{}).
		Where("donation_pot_id = ? AND donation_status = ?", pot.PotID, model.DonationStatusCompleted)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Donation
	if err := db.Order("donation_processed_at DESC").
		Limit(paging.Limit).Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "Data donasi berhasil diambil.", dto.FromModels(rows), &pg)
}

// GET /api/u/donations/:id
func (ctrl *DonationController) GetDonationByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var d model.Donation
	if err := ctrl.DB.WithContext(c.Context()).First(&d, "donation_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Donasi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "Data donasi berhasil diambil.", dto.FromModel(&d))
}
