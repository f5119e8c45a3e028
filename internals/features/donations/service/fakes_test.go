package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	donationModel "patunganku_backend/internals/features/donations/model"
	potModel "patunganku_backend/internals/features/pots/model"
)

/* =========================================================
   In-memory fakes dengan semantik atomik yang sama seperti
   GormLedgerStore (guard + atomic add di bawah satu mutex).
========================================================= */

type fakeStore struct {
	mu         sync.Mutex
	pots       map[uuid.UUID]*potModel.Pot
	donations  map[uuid.UUID]*donationModel.Donation
	byOrderID  map[string]uuid.UUID
	deliveries map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pots:       map[uuid.UUID]*potModel.Pot{},
		donations:  map[uuid.UUID]*donationModel.Donation{},
		byOrderID:  map[string]uuid.UUID{},
		deliveries: map[string]time.Time{},
	}
}

func (s *fakeStore) addPot(p *potModel.Pot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pots[p.PotID] = p
}

func (s *fakeStore) addDonation(d *donationModel.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[d.DonationID] = d
	s.byOrderID[d.DonationOrderID] = d.DonationID
}

func (s *fakeStore) potAmount(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pots[id].PotCurrentAmountIDR
}

func (s *fakeStore) donationStatus(id uuid.UUID) donationModel.DonationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.donations[id].DonationStatus
}

func (s *fakeStore) GetPot(_ context.Context, id uuid.UUID) (*potModel.Pot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pots[id]
	if !ok {
		return nil, fmt.Errorf("pot %s: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) GetDonation(_ context.Context, id uuid.UUID) (*donationModel.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, fmt.Errorf("donation %s: %w", id, ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) GetDonationByOrderID(_ context.Context, orderID string) (*donationModel.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOrderID[orderID]
	if !ok {
		return nil, fmt.Errorf("donation order_id=%s: %w", orderID, ErrNotFound)
	}
	cp := *s.donations[id]
	return &cp, nil
}

func (s *fakeStore) InsertDonation(_ context.Context, d *donationModel.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.DonationID == uuid.Nil {
		d.DonationID = uuid.New()
	}
	if d.DonationCreatedAt.IsZero() {
		d.DonationCreatedAt = time.Now()
	}
	cp := *d
	s.donations[cp.DonationID] = &cp
	s.byOrderID[cp.DonationOrderID] = cp.DonationID
	return nil
}

func (s *fakeStore) UpdateDonationCheckout(_ context.Context, id uuid.UUID, snapToken, checkoutURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return fmt.Errorf("donation %s: %w", id, ErrNotFound)
	}
	d.DonationSnapToken = &snapToken
	d.DonationCheckoutURL = &checkoutURL
	return nil
}

func (s *fakeStore) ConditionalUpdateDonationStatus(_ context.Context, id uuid.UUID, expected, next donationModel.DonationStatus, fields map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.DonationStatus != expected {
		return false, nil
	}
	d.DonationStatus = next
	for k, v := range fields {
		switch k {
		case "donation_provider_transaction_id":
			tx := v.(string)
			d.DonationProviderTransactionID = &tx
		case "donation_provider_status":
			st := v.(string)
			d.DonationProviderStatus = &st
		case "donation_payment_type":
			pt := v.(string)
			d.DonationPaymentType = &pt
		case "donation_processed_at":
			t := v.(time.Time)
			d.DonationProcessedAt = &t
		}
	}
	return true, nil
}

func (s *fakeStore) IncrementPotAmount(_ context.Context, potID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pots[potID]
	if !ok {
		return fmt.Errorf("pot %s: %w", potID, ErrNotFound)
	}
	p.PotCurrentAmountIDR += delta
	return nil
}

func (s *fakeStore) RecordWebhookDelivery(_ context.Context, eventKey, _, _ string, _ []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[eventKey]; ok {
		return true, nil
	}
	s.deliveries[eventKey] = time.Now()
	return false, nil
}

func (s *fakeStore) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]donationModel.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []donationModel.Donation
	for _, d := range s.donations {
		if d.DonationStatus == donationModel.DonationStatusPending && d.DonationCreatedAt.Before(olderThan) {
			out = append(out, *d)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeStore) PurgeWebhookDeliveries(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, at := range s.deliveries {
		if at.Before(before) {
			delete(s.deliveries, k)
			n++
		}
	}
	return n, nil
}

/* =========================================================
   Fake gateway & notifier
========================================================= */

type fakeGateway struct {
	mu          sync.Mutex
	session     *CheckoutSession
	checkoutErr error
	statuses    map[string]*StatusResult
	statusErrs  map[string]error
	openCalls   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		session:    &CheckoutSession{SnapToken: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"},
		statuses:   map[string]*StatusResult{},
		statusErrs: map[string]error{},
	}
}

func (g *fakeGateway) OpenCheckout(_ context.Context, _ CheckoutRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.openCalls++
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return g.session, nil
}

func (g *fakeGateway) QueryStatus(_ context.Context, orderID string) (*StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.statusErrs[orderID]; ok {
		return nil, err
	}
	if res, ok := g.statuses[orderID]; ok {
		return res, nil
	}
	return &StatusResult{Outcome: OutcomePending, RawStatus: "not_found"}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []SettlementEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev SettlementEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

/* =========================================================
   Seed helpers
========================================================= */

func seedPot(store *fakeStore, status potModel.PotStatus) *potModel.Pot {
	p := &potModel.Pot{
		PotID:          uuid.New(),
		PotOwnerUserID: uuid.New(),
		PotTitle:       "Renovasi Posyandu",
		PotSlug:        "renovasi-posyandu",
		PotStatus:      status,
	}
	store.addPot(p)
	return p
}

var orderSeq atomic.Int64

func seedPendingDonation(store *fakeStore, potID uuid.UUID, amount int, age time.Duration) *donationModel.Donation {
	d := &donationModel.Donation{
		DonationID:        uuid.New(),
		DonationPotID:     potID,
		DonationName:      "Budi",
		DonationAmountIDR: amount,
		DonationStatus:    donationModel.DonationStatusPending,
		DonationOrderID:   fmt.Sprintf("POTDON-%d", orderSeq.Add(1)),
		DonationCreatedAt: time.Now().Add(-age),
	}
	store.addDonation(d)
	return d
}
