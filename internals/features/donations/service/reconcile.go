package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

/* =========================================================
   Reconciliation — sweep harian untuk donasi pending yang
   tidak pernah dikonfirmasi webhook. Trigger dari luar
   (cron → endpoint admin), bukan timer internal.
   Transisi memakai jalur Settlement yang SAMA dengan webhook.
========================================================= */

type Reconciler struct {
	Store      LedgerStore
	Gateway    GatewayClient
	Settlement *Settlement

	// Donasi pending lebih muda dari ini dilewati — jangan balapan
	// sama webhook yang cuma telat.
	StaleAfter time.Duration
	// Worker pool terbatas; item independen kecuali nyentuh pot yang sama,
	// dan itu pun aman karena increment pot atomik.
	Workers    int
	BatchLimit int
	// Retensi ledger dedup webhook.
	EventRetention time.Duration

	now func() time.Time
}

func NewReconciler(store LedgerStore, gateway GatewayClient, settlement *Settlement) *Reconciler {
	return &Reconciler{
		Store:          store,
		Gateway:        gateway,
		Settlement:     settlement,
		StaleAfter:     time.Hour,
		Workers:        8,
		BatchLimit:     500,
		EventRetention: 30 * 24 * time.Hour,
		now:            time.Now,
	}
}

type ReconcileReport struct {
	Resolved     int      `json:"resolved"`
	StillPending int      `json:"still_pending"`
	Errors       []string `json:"errors,omitempty"`
}

// RunOnce: best-effort — kegagalan per item dikumpulkan, tidak membatalkan batch.
// Diulang di cadence berikutnya.
func (r *Reconciler) RunOnce(ctx context.Context) (*ReconcileReport, error) {
	cutoff := r.now().Add(-r.StaleAfter)
	stale, err := r.Store.ListStalePending(ctx, cutoff, r.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("gagal ambil donasi pending: %w", err)
	}
	log.Printf("🔁 Reconciliation mulai: %d donasi pending lebih tua dari %s", len(stale), r.StaleAfter)

	report := &ReconcileReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i := range stale {
		d := stale[i]
		g.Go(func() error {
			res, err := r.Gateway.QueryStatus(gctx, d.DonationOrderID)
			if err != nil {
				mu.Lock()
				report.Errors = append(report.Errors, fmt.Sprintf("order_id=%s: %v", d.DonationOrderID, err))
				mu.Unlock()
				return nil // jangan gagalkan batch
			}

			if res.Outcome == OutcomePending || res.Outcome == OutcomeUnknown {
				mu.Lock()
				report.StillPending++
				mu.Unlock()
				return nil
			}

			applied, err := r.Settlement.Apply(gctx, &d, res)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Errors = append(report.Errors, fmt.Sprintf("order_id=%s: apply: %v", d.DonationOrderID, err))
			case applied:
				report.Resolved++
			default:
				// Guard tidak kena → webhook keburu settle duluan. Tetap terminal.
				report.Resolved++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return report, err
	}

	// Piggyback: bersihkan ledger dedup yang lewat retensi.
	if purged, err := r.Store.PurgeWebhookDeliveries(ctx, r.now().Add(-r.EventRetention)); err != nil {
		log.Printf("[WARN] purge gateway_events gagal: %v", err)
	} else if purged > 0 {
		log.Printf("🧹 %d row gateway_events kadaluarsa dibuang", purged)
	}

	log.Printf("✅ Reconciliation selesai: resolved=%d still_pending=%d errors=%d",
		report.Resolved, report.StillPending, len(report.Errors))
	return report, nil
}
