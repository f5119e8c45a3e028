package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donationModel "patunganku_backend/internals/features/donations/model"
	potModel "patunganku_backend/internals/features/pots/model"
)

func TestInitiate_HappyPath(t *testing.T) {
	store := newFakeStore()
	pot := seedPot(store, potModel.PotStatusActive)
	gw := newFakeGateway()
	init := NewInitiator(store, gw)

	email := "budi@example.com"
	res, err := init.Initiate(context.Background(), InitiateInput{
		PotID:      pot.PotID,
		AmountIDR:  100_000,
		DonorName:  "Budi",
		DonorEmail: &email,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.OrderID, "POTDON-"))
	assert.Equal(t, "snap-token", res.SnapToken)
	assert.NotEmpty(t, res.CheckoutURL)

	// Row pending harus sudah ada sebelum URL dikembalikan.
	d, err := store.GetDonation(context.Background(), res.DonationID)
	require.NoError(t, err)
	assert.Equal(t, donationModel.DonationStatusPending, d.DonationStatus)
	assert.Equal(t, 100_000, d.DonationAmountIDR)
	assert.Equal(t, res.OrderID, d.DonationOrderID)
	require.NotNil(t, d.DonationSnapToken)
	assert.Equal(t, "snap-token", *d.DonationSnapToken)

	// Pot belum boleh berubah sebelum settlement.
	assert.Equal(t, 0, store.potAmount(pot.PotID))
}

func TestInitiate_PotNotFound(t *testing.T) {
	init := NewInitiator(newFakeStore(), newFakeGateway())
	_, err := init.Initiate(context.Background(), InitiateInput{
		PotID:     uuid.New(),
		AmountIDR: 10_000,
		DonorName: "Budi",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInitiate_PotNotAcceptingDonations(t *testing.T) {
	for _, status := range []potModel.PotStatus{
		potModel.PotStatusClosed,
		potModel.PotStatusExpired,
		potModel.PotStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			store := newFakeStore()
			pot := seedPot(store, status)
			gw := newFakeGateway()
			init := NewInitiator(store, gw)

			_, err := init.Initiate(context.Background(), InitiateInput{
				PotID:     pot.PotID,
				AmountIDR: 10_000,
				DonorName: "Budi",
			})
			require.ErrorIs(t, err, ErrInvalidState)

			// Tidak boleh ada row donasi maupun call ke gateway.
			store.mu.Lock()
			assert.Empty(t, store.donations)
			store.mu.Unlock()
			assert.Equal(t, 0, gw.openCalls)
		})
	}
}

func TestInitiate_InvalidInput(t *testing.T) {
	store := newFakeStore()
	pot := seedPot(store, potModel.PotStatusActive)
	init := NewInitiator(store, newFakeGateway())

	_, err := init.Initiate(context.Background(), InitiateInput{PotID: pot.PotID, AmountIDR: 0, DonorName: "Budi"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = init.Initiate(context.Background(), InitiateInput{PotID: pot.PotID, AmountIDR: -5_000, DonorName: "Budi"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = init.Initiate(context.Background(), InitiateInput{PotID: pot.PotID, AmountIDR: 10_000})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInitiate_GatewayDownLeavesPendingRow(t *testing.T) {
	store := newFakeStore()
	pot := seedPot(store, potModel.PotStatusActive)
	gw := newFakeGateway()
	gw.checkoutErr = fmt.Errorf("%w: connection refused", ErrGatewayUnavailable)
	init := NewInitiator(store, gw)

	_, err := init.Initiate(context.Background(), InitiateInput{
		PotID:     pot.PotID,
		AmountIDR: 10_000,
		DonorName: "Budi",
	})
	require.ErrorIs(t, err, ErrGatewayUnavailable)

	// Row pending tetap tersimpan — rekonsiliasi yang bereskan nanti.
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.donations, 1)
	for _, d := range store.donations {
		assert.Equal(t, donationModel.DonationStatusPending, d.DonationStatus)
		assert.Nil(t, d.DonationSnapToken)
	}
}
