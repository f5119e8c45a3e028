package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

/* =========================================================
   Gateway Client — satu-satunya jalur keluar ke Midtrans.
   Snap untuk buka checkout, Core API untuk query status
   (rekonsiliasi). Retry kecil & terbatas, hanya untuk error
   transport / 5xx — 4xx tidak pernah di-retry.
========================================================= */

type CheckoutRequest struct {
	OrderID    string
	AmountIDR  int
	DonorName  string
	DonorEmail string
	ItemName   string // judul pot, tampil di halaman Snap
}

type CheckoutSession struct {
	SnapToken   string
	RedirectURL string
}

type StatusResult struct {
	Outcome       SettlementOutcome
	TransactionID string
	RawStatus     string // mirror mentah transaction_status provider (audit)
	PaymentType   string
	GrossAmount   string
}

type GatewayClient interface {
	OpenCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	QueryStatus(ctx context.Context, orderID string) (*StatusResult, error)
}

/* =========================================================
   Implementasi Midtrans
========================================================= */

type MidtransGateway struct {
	snap    snap.Client
	core    coreapi.Client
	retries int
}

func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}

	// Timeout keras di transport; timeout → GatewayUnavailable, BUKAN "payment failed".
	midtrans.DefaultGoHttpClient = &http.Client{Timeout: 10 * time.Second}

	g := &MidtransGateway{retries: 2}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g
}

func (g *MidtransGateway) OpenCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.AmountIDR <= 0 {
		return nil, fmt.Errorf("%w: amount_idr harus > 0", ErrInvalidArgument)
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id kosong", ErrInvalidArgument)
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: int64(req.AmountIDR),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.DonorName,
			Email: req.DonorEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       req.OrderID,
				Price:    int64(req.AmountIDR),
				Qty:      1,
				Name:     firstNonEmpty(req.ItemName, "Donasi"),
				Category: "DONATION",
			},
		},
	}

	var resp *snap.Response
	err := g.withRetry(ctx, func() *midtrans.Error {
		var mErr *midtrans.Error
		resp, mErr = g.snap.CreateTransaction(snapReq)
		return mErr
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{SnapToken: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) QueryStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	var resp *coreapi.TransactionStatusResponse
	err := g.withRetry(ctx, func() *midtrans.Error {
		var mErr *midtrans.Error
		resp, mErr = g.core.CheckTransaction(orderID)
		// 404 = transaksi belum pernah dibuat di sisi provider (checkout tidak
		// pernah dibayar). Bukan failure — donasi dibiarkan pending.
		if mErr != nil && mErr.StatusCode == http.StatusNotFound {
			resp = nil
			return nil
		}
		return mErr
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &StatusResult{Outcome: OutcomePending, RawStatus: "not_found"}, nil
	}
	return &StatusResult{
		Outcome:       mapProviderStatus(resp.TransactionStatus, resp.FraudStatus),
		TransactionID: resp.TransactionID,
		RawStatus:     resp.TransactionStatus,
		PaymentType:   resp.PaymentType,
		GrossAmount:   resp.GrossAmount,
	}, nil
}

/* =========================================================
   Retry helper
========================================================= */

func (g *MidtransGateway) withRetry(ctx context.Context, call func() *midtrans.Error) error {
	var last *midtrans.Error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrGatewayUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		mErr := call()
		if mErr == nil {
			return nil
		}
		last = mErr
		if !retryable(mErr) {
			// 4xx: salah di sisi kita / request ditolak — jangan retry.
			return fmt.Errorf("midtrans rejected request (status %d): %s", mErr.StatusCode, mErr.Message)
		}
	}
	return fmt.Errorf("%w: %s", ErrGatewayUnavailable, last.Message)
}

// retryable: error transport (StatusCode 0) atau 5xx.
func retryable(e *midtrans.Error) bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func firstNonEmpty(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
