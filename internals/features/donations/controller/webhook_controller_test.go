package controller

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donationModel "patunganku_backend/internals/features/donations/model"
	"patunganku_backend/internals/features/donations/service"
	potModel "patunganku_backend/internals/features/pots/model"
)

const serverKey = "SB-Mid-server-controller-key"

/* =========================================================
   Stub store minimal — cukup buat jalur webhook.
========================================================= */

type stubStore struct {
	donation *donationModel.Donation
	pot      *potModel.Pot
	seen     map[string]bool
}

func newStubStore() *stubStore {
	pot := &potModel.Pot{PotID: uuid.New(), PotStatus: potModel.PotStatusActive}
	return &stubStore{
		pot: pot,
		donation: &donationModel.Donation{
			DonationID:        uuid.New(),
			DonationPotID:     pot.PotID,
			DonationAmountIDR: 50_000,
			DonationStatus:    donationModel.DonationStatusPending,
			DonationOrderID:   "POTDON-CTRL-1",
		},
		seen: map[string]bool{},
	}
}

func (s *stubStore) GetPot(_ context.Context, _ uuid.UUID) (*potModel.Pot, error) {
	return s.pot, nil
}

func (s *stubStore) GetDonation(_ context.Context, _ uuid.UUID) (*donationModel.Donation, error) {
	return s.donation, nil
}

func (s *stubStore) GetDonationByOrderID(_ context.Context, orderID string) (*donationModel.Donation, error) {
	if orderID != s.donation.DonationOrderID {
		return nil, fmt.Errorf("donation order_id=%s: %w", orderID, service.ErrNotFound)
	}
	return s.donation, nil
}

func (s *stubStore) InsertDonation(_ context.Context, _ *donationModel.Donation) error { return nil }

func (s *stubStore) UpdateDonationCheckout(_ context.Context, _ uuid.UUID, _, _ string) error {
	return nil
}

func (s *stubStore) ConditionalUpdateDonationStatus(_ context.Context, _ uuid.UUID, expected, next donationModel.DonationStatus, _ map[string]any) (bool, error) {
	if s.donation.DonationStatus != expected {
		return false, nil
	}
	s.donation.DonationStatus = next
	return true, nil
}

func (s *stubStore) IncrementPotAmount(_ context.Context, _ uuid.UUID, delta int) error {
	s.pot.PotCurrentAmountIDR += delta
	return nil
}

func (s *stubStore) RecordWebhookDelivery(_ context.Context, eventKey, _, _ string, _ []byte) (bool, error) {
	if s.seen[eventKey] {
		return true, nil
	}
	s.seen[eventKey] = true
	return false, nil
}

func (s *stubStore) ListStalePending(_ context.Context, _ time.Time, _ int) ([]donationModel.Donation, error) {
	return nil, nil
}

func (s *stubStore) PurgeWebhookDeliveries(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

/* =========================================================
   Helpers
========================================================= */

func newWebhookApp(store *stubStore) *fiber.App {
	processor := service.NewWebhookProcessor(store, service.NewSettlement(store, service.LogNotifier{}), serverKey)
	ctrl := NewWebhookController(processor)

	app := fiber.New()
	app.Get("/payments/midtrans/notification", ctrl.Ping)
	app.Post("/payments/midtrans/notification", ctrl.HandleMidtransNotification)
	return app
}

func signedBody(t *testing.T, orderID string, signature string) []byte {
	t.Helper()
	gross := "50000.00"
	if signature == "" {
		sum := sha512.Sum512([]byte(orderID + "200" + gross + serverKey))
		signature = hex.EncodeToString(sum[:])
	}
	raw, err := sonic.Marshal(map[string]string{
		"order_id":           orderID,
		"transaction_id":     "tx-ctrl-1",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       gross,
		"signature_key":      signature,
	})
	require.NoError(t, err)
	return raw
}

func postNotification(t *testing.T, app *fiber.App, body []byte) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/payments/midtrans/notification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	if b, err := io.ReadAll(resp.Body); err == nil && len(b) > 0 {
		_ = sonic.Unmarshal(b, &parsed)
	}
	return resp.StatusCode, parsed
}

/* =========================================================
   Tests — kebijakan ack HTTP
========================================================= */

func TestWebhookEndpoint_ValidNotification(t *testing.T) {
	store := newStubStore()
	app := newWebhookApp(store)

	status, body := postNotification(t, app, signedBody(t, store.donation.DonationOrderID, ""))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, donationModel.DonationStatusCompleted, store.donation.DonationStatus)
	assert.Equal(t, 50_000, store.pot.PotCurrentAmountIDR)
}

func TestWebhookEndpoint_BadSignatureIs401(t *testing.T) {
	store := newStubStore()
	app := newWebhookApp(store)

	status, _ := postNotification(t, app, signedBody(t, store.donation.DonationOrderID, "deadbeef"))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, donationModel.DonationStatusPending, store.donation.DonationStatus)
}

func TestWebhookEndpoint_BadBodyIs400(t *testing.T) {
	app := newWebhookApp(newStubStore())

	status, _ := postNotification(t, app, []byte("{broken"))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postNotification(t, app, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestWebhookEndpoint_UnknownOrderAckedWith200(t *testing.T) {
	app := newWebhookApp(newStubStore())

	status, body := postNotification(t, app, signedBody(t, "POTDON-ghost", ""))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestWebhookEndpoint_DuplicateAckedWith200(t *testing.T) {
	store := newStubStore()
	app := newWebhookApp(store)

	raw := signedBody(t, store.donation.DonationOrderID, "")
	status, _ := postNotification(t, app, raw)
	require.Equal(t, fiber.StatusOK, status)

	status, body := postNotification(t, app, raw)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 50_000, store.pot.PotCurrentAmountIDR)
}

func TestWebhookEndpoint_Ping(t *testing.T) {
	app := newWebhookApp(newStubStore())
	req := httptest.NewRequest("GET", "/payments/midtrans/notification", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
