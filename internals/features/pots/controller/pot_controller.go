package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"patunganku_backend/internals/features/pots/dto"
	"patunganku_backend/internals/features/pots/model"
	helper "patunganku_backend/internals/helpers"
)

type PotController struct {
	DB *gorm.DB
}

func NewPotController(db *gorm.DB) *PotController {
	return &PotController{DB: db}
}

/* =======================================================================
   Create
======================================================================= */

// POST /api/u/pots
func (ctrl *PotController) CreatePot(c *fiber.Ctx) error {
	var body dto.CreatePotRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.Validate(); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ownerIDStr, _ := c.Locals("user_id").(string)
	ownerID, err := uuid.Parse(ownerIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User ID tidak valid")
	}

	slug := helper.GenerateSlug(body.PotTitle)
	if slug == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "pot_title tidak bisa dijadikan slug")
	}

	pot := model.Pot{
		PotOwnerUserID:     ownerID,
		PotTitle:           strings.TrimSpace(body.PotTitle),
		PotSlug:            slug,
		PotDescription:     body.PotDescription,
		PotTargetAmountIDR: body.PotTargetAmountIDR,
		PotStatus:          model.PotStatusActive,
		PotExpiresAt:       body.PotExpiresAt,
	}

	// slug unik: kalau bentrok, tambahkan suffix pendek
	if err := ctrl.DB.WithContext(c.Context()).Create(&pot).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			pot.PotSlug = fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
			err = ctrl.DB.WithContext(c.Context()).Create(&pot).Error
		}
		if err != nil {
			log.Println("[ERROR] Failed to create pot:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan pot")
		}
	}

	return helper.JsonCreated(c, "Pot berhasil dibuat.", dto.FromModel(&pot))
}

/* =======================================================================
   Read
======================================================================= */

// GET /api/public/pots/:slug
func (ctrl *PotController) GetPotBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Slug pot tidak boleh kosong")
	}

	var pot model.Pot
	if err := ctrl.DB.WithContext(c.Context()).
		First(&pot, "pot_slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Pot tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "Data pot berhasil diambil.", dto.FromModel(&pot))
}

// GET /api/public/pots?status=&page=&per_page=
func (ctrl *PotController) ListPots(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.Context()).Model(&model.Pot{})

	if s := strings.TrimSpace(c.Query("status")); s != "" {
		db = db.Where("pot_status = ?", strings.ToLower(s))
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.Pot
	if err := db.Order("pot_created_at DESC").
		Limit(paging.Limit).Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "Data pot berhasil diambil.", dto.FromModels(rows), &pg)
}

/* =======================================================================
   Status (aksi administratif: close / cancel)
======================================================================= */

// PATCH /api/a/pots/:id/status
func (ctrl *PotController) UpdatePotStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var body dto.UpdatePotStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := body.Validate(); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	now := time.Now()
	res := ctrl.DB.WithContext(c.Context()).
		Model(&model.Pot{}).
		Where("pot_id = ? AND pot_status = ?", id, model.PotStatusActive).
		Updates(map[string]any{
			"pot_status":    body.PotStatus,
			"pot_closed_at": now,
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Pot tidak ditemukan atau sudah tidak active")
	}

	var pot model.Pot
	if err := ctrl.DB.WithContext(c.Context()).First(&pot, "pot_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Status pot diperbarui.", dto.FromModel(&pot))
}
