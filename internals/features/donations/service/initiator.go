package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	donationModel "patunganku_backend/internals/features/donations/model"
)

/* =========================================================
   Payment Initiator — validasi request donasi, buka checkout
   Snap, simpan row pending SEBELUM URL dikembalikan. Dana
   belum dihitung ke pot sampai settlement.
========================================================= */

type Initiator struct {
	Store   LedgerStore
	Gateway GatewayClient
	now     func() time.Time
}

func NewInitiator(store LedgerStore, gateway GatewayClient) *Initiator {
	return &Initiator{Store: store, Gateway: gateway, now: time.Now}
}

type InitiateInput struct {
	PotID      uuid.UUID
	AmountIDR  int
	DonorName  string
	DonorEmail *string
	Message    *string
	UserID     *uuid.UUID // nil untuk donatur guest
}

type InitiateResult struct {
	DonationID  uuid.UUID `json:"donation_id"`
	OrderID     string    `json:"order_id"`
	SnapToken   string    `json:"snap_token"`
	CheckoutURL string    `json:"checkout_url"`
}

func (i *Initiator) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	if in.AmountIDR <= 0 {
		return nil, fmt.Errorf("%w: donation_amount_idr harus > 0", ErrInvalidArgument)
	}
	if in.DonorName == "" {
		return nil, fmt.Errorf("%w: donation_name wajib diisi", ErrInvalidArgument)
	}

	pot, err := i.Store.GetPot(ctx, in.PotID)
	if err != nil {
		return nil, err
	}
	if !pot.AcceptsDonations() {
		return nil, fmt.Errorf("%w: pot %s berstatus %s", ErrInvalidState, pot.PotSlug, pot.PotStatus)
	}

	orderID := fmt.Sprintf("POTDON-%d", i.now().UnixNano())

	// 1) Row pending dulu. URL checkout tidak boleh keluar tanpa record lokal —
	//    pembayaran yang sukses tanpa record tidak bisa direkonsiliasi.
	donation := donationModel.Donation{
		DonationPotID:     in.PotID,
		DonationUserID:    in.UserID,
		DonationName:      in.DonorName,
		DonationEmail:     in.DonorEmail,
		DonationMessage:   in.Message,
		DonationAmountIDR: in.AmountIDR,
		DonationStatus:    donationModel.DonationStatusPending,
		DonationOrderID:   orderID,
	}
	if err := i.Store.InsertDonation(ctx, &donation); err != nil {
		return nil, fmt.Errorf("gagal menyimpan donasi: %w", err)
	}

	// 2) Buka checkout. Kalau gateway tumbang, row pending tetap ada —
	//    soft failure, bukan fatal.
	email := ""
	if in.DonorEmail != nil {
		email = *in.DonorEmail
	}
	session, err := i.Gateway.OpenCheckout(ctx, CheckoutRequest{
		OrderID:    orderID,
		AmountIDR:  in.AmountIDR,
		DonorName:  in.DonorName,
		DonorEmail: email,
		ItemName:   pot.PotTitle,
	})
	if err != nil {
		return nil, err
	}

	// 3) Simpan token + URL (best-effort; order_id sudah cukup buat rekonsiliasi).
	if err := i.Store.UpdateDonationCheckout(ctx, donation.DonationID, session.SnapToken, session.RedirectURL); err != nil {
		log.Printf("[WARN] gagal simpan snap token untuk order_id=%s: %v", orderID, err)
	}

	return &InitiateResult{
		DonationID:  donation.DonationID,
		OrderID:     orderID,
		SnapToken:   session.SnapToken,
		CheckoutURL: session.RedirectURL,
	}, nil
}
