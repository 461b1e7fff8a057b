package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedNow(t *testing.T, s *Service, stamp string) {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", stamp)
	if err != nil {
		t.Fatalf("bad stamp %q: %v", stamp, err)
	}
	s.now = func() time.Time { return parsed }
}

func TestNewActorKeyFallsBackToDisplayName(t *testing.T) {
	actor := NewActor("Budi", "BudiTrader")
	if actor.Key != "buditrader" {
		t.Fatalf("key = %q, want buditrader", actor.Key)
	}
	actor = NewActor("Budi", "")
	if actor.Key != "Budi" {
		t.Fatalf("key fallback = %q, want Budi", actor.Key)
	}
}

func TestAddTradeNormalizesAndStampsToday(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	fixedNow(t, svc, "2026-08-14 10:00")
	actor := NewActor("Budi", "buditrader")

	first, err := svc.AddTrade(context.Background(), actor, "bbri", "+1,250,000")
	if err != nil {
		t.Fatalf("AddTrade: %v", err)
	}
	second, err := svc.AddTrade(context.Background(), actor, "TLKM", "-2000000")
	if err != nil {
		t.Fatalf("AddTrade: %v", err)
	}

	if first.ID == 0 || second.ID != first.ID+1 {
		t.Fatalf("ids not monotonic: %d then %d", first.ID, second.ID)
	}
	if first.Symbol != "BBRI" {
		t.Fatalf("symbol = %q, want BBRI", first.Symbol)
	}
	if first.TradeDate != "2026-08-14" {
		t.Fatalf("trade date = %q, want 2026-08-14", first.TradeDate)
	}
	if first.Amount.String() != "1250000" {
		t.Fatalf("amount = %s, want 1250000", first.Amount)
	}
	if first.OwnerKey != "buditrader" {
		t.Fatalf("owner key = %q", first.OwnerKey)
	}
}

func TestAddTradeRejectsBadInput(t *testing.T) {
	svc := newTestService(newStubRepo())
	actor := NewActor("Budi", "buditrader")

	var verr *ValidationError
	if _, err := svc.AddTrade(context.Background(), actor, "", "100"); !errors.As(err, &verr) {
		t.Fatalf("empty symbol: got %v, want ValidationError", err)
	}
	if _, err := svc.AddTrade(context.Background(), actor, "BBRI", "lots"); !errors.As(err, &verr) {
		t.Fatalf("bad amount: got %v, want ValidationError", err)
	}
}

func TestEditTradeOwnership(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, "bossman")
	owner := NewActor("Budi", "buditrader")

	trade, err := svc.AddTrade(context.Background(), owner, "BBRI", "100")
	if err != nil {
		t.Fatalf("AddTrade: %v", err)
	}

	cases := []struct {
		name    string
		actor   Actor
		wantErr error
	}{
		{"same display name", NewActor("Budi", "otherhandle"), nil},
		{"same stable key", NewActor("Budi Renamed", "BudiTrader"), nil},
		{"admin handle", NewActor("Boss", "BossMan"), nil},
		{"stranger", NewActor("Eve", "eve"), ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.EditTrade(context.Background(), tc.actor, trade.ID, "200")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEditTradeNotFound(t *testing.T) {
	svc := newTestService(newStubRepo())
	_, err := svc.EditTrade(context.Background(), NewActor("Budi", "buditrader"), 999, "50")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTradeRemovesRow(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	actor := NewActor("Budi", "buditrader")
	trade, err := svc.AddTrade(context.Background(), actor, "BBRI", "100")
	if err != nil {
		t.Fatalf("AddTrade: %v", err)
	}
	if err := svc.DeleteTrade(context.Background(), actor, trade.ID); err != nil {
		t.Fatalf("DeleteTrade: %v", err)
	}
	if err := svc.DeleteTrade(context.Background(), actor, trade.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestAdminAddTrade(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, "bossman")

	if _, err := svc.AdminAddTrade(context.Background(), NewActor("Eve", "eve"), "Budi", "BBRI", "100"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin err = %v, want ErrForbidden", err)
	}

	admin := NewActor("Boss", "bossman")
	byName, err := svc.AdminAddTrade(context.Background(), admin, "Budi", "BBRI", "100")
	if err != nil {
		t.Fatalf("AdminAddTrade: %v", err)
	}
	if byName.OwnerName != "Budi" || byName.OwnerKey != "" {
		t.Fatalf("by name: owner=%q key=%q", byName.OwnerName, byName.OwnerKey)
	}

	byHandle, err := svc.AdminAddTrade(context.Background(), admin, "@BudiTrader", "BBRI", "100")
	if err != nil {
		t.Fatalf("AdminAddTrade: %v", err)
	}
	if byHandle.OwnerName != "BudiTrader" || byHandle.OwnerKey != "buditrader" {
		t.Fatalf("by handle: owner=%q key=%q", byHandle.OwnerName, byHandle.OwnerKey)
	}
}

func TestListTradesValidatesDates(t *testing.T) {
	svc := newTestService(newStubRepo())
	var verr *ValidationError
	if _, err := svc.ListTrades(context.Background(), TradeFilter{From: "14-08-2026"}); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Msg != "Dates must be YYYY-MM-DD" {
		t.Fatalf("msg = %q", verr.Msg)
	}
}

func TestListTradesTwoTierUserFilter(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	fixedNow(t, svc, "2026-08-14 10:00")

	// Legacy row: display name only, no stable key.
	legacy := NewActor("Budi", "")
	if _, err := svc.AddTrade(context.Background(), legacy, "BBRI", "100"); err != nil {
		t.Fatalf("AddTrade: %v", err)
	}
	// Keyed row under a changed display name.
	renamed := NewActor("Budi Santoso", "buditrader")
	if _, err := svc.AddTrade(context.Background(), renamed, "TLKM", "200"); err != nil {
		t.Fatalf("AddTrade: %v", err)
	}
	other := NewActor("Eve", "eve")
	if _, err := svc.AddTrade(context.Background(), other, "BBRI", "300"); err != nil {
		t.Fatalf("AddTrade: %v", err)
	}

	items, err := svc.ListTrades(context.Background(), TradeFilter{User: "Budi", UserKey: "buditrader"})
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (name match + key match)", len(items))
	}
	for _, item := range items {
		if item.OwnerName == "Eve" {
			t.Fatalf("filter leaked another owner's row")
		}
	}
}

func TestDeletePositionsBatchOutcomes(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	owner := NewActor("Budi", "buditrader")
	stranger := NewActor("Eve", "eve")

	mine, err := svc.AddPosition(context.Background(), owner, "BBRI", "100", "4500")
	if err != nil {
		t.Fatalf("AddPosition: %v", err)
	}
	theirs, err := svc.AddPosition(context.Background(), stranger, "TLKM", "50", "3000")
	if err != nil {
		t.Fatalf("AddPosition: %v", err)
	}

	outcomes := svc.DeletePositions(context.Background(), owner, []uint64{mine.ID, theirs.ID, 999})
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	if outcomes[0].Err != nil {
		t.Fatalf("own id: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, ErrForbidden) {
		t.Fatalf("other's id err = %v, want ErrForbidden", outcomes[1].Err)
	}
	if !errors.Is(outcomes[2].Err, ErrNotFound) {
		t.Fatalf("missing id err = %v, want ErrNotFound", outcomes[2].Err)
	}
	// Failures must not abort the rest: the owned row is gone.
	got, err := repo.GetPositionByID(context.Background(), mine.ID)
	if err != nil || got != nil {
		t.Fatalf("owned position still present: %v %v", got, err)
	}
}

func TestEditPositionUpdatesHolding(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	owner := NewActor("Budi", "buditrader")
	pos, err := svc.AddPosition(context.Background(), owner, "BBRI", "100", "4500")
	if err != nil {
		t.Fatalf("AddPosition: %v", err)
	}
	edited, err := svc.EditPosition(context.Background(), owner, pos.ID, "150", "4,600")
	if err != nil {
		t.Fatalf("EditPosition: %v", err)
	}
	if edited.Quantity.String() != "150" || edited.AvgPrice.String() != "4600" {
		t.Fatalf("holding = %s @ %s", edited.Quantity, edited.AvgPrice)
	}

	var verr *ValidationError
	if _, err := svc.EditPosition(context.Background(), owner, pos.ID, "abc", "100"); !errors.As(err, &verr) {
		t.Fatalf("bad qty err = %v, want ValidationError", err)
	}
}
