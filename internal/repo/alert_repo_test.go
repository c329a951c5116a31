package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

func TestSubscriptions_CreateDuplicateListDelete(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	p1 := seedProduct(t, db, "zlatna-1", "One")
	p2 := seedProduct(t, db, "zlatna-2", "Two")

	s1, err := CreateSubscription(ctx, db, u.ID, p1.ID)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if _, err := CreateSubscription(ctx, db, u.ID, p1.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, err := GetSubscription(ctx, db, u.ID, p1.ID)
	if err != nil || got.ID != s1.ID {
		t.Fatalf("GetSubscription: %+v %v", got, err)
	}

	// Make p2's subscription strictly newer.
	time.Sleep(2 * time.Millisecond)
	if _, err := CreateSubscription(ctx, db, u.ID, p2.ID); err != nil {
		t.Fatal(err)
	}

	list, err := ListUserSubscriptions(ctx, db, u.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListUserSubscriptions: %v %+v", err, list)
	}
	if list[0].ProductID != p2.ID || list[0].Product.Name != "Two" {
		t.Fatalf("expected newest first with product loaded, got %+v", list[0])
	}

	n, err := DeleteSubscription(ctx, db, u.ID, p1.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteSubscription: n=%d err=%v", n, err)
	}
	n, _ = DeleteSubscription(ctx, db, u.ID, p1.ID)
	if n != 0 {
		t.Fatalf("second delete should affect 0 rows, got %d", n)
	}
}

func TestListSubscribers_LoadsUsers(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedProduct(t, db, "zlatna-1", "One")
	a := seedUser(t, db, "a@example.com")
	b := seedUser(t, db, "b@example.com")
	other := seedProduct(t, db, "zlatna-2", "Two")
	for _, uid := range []string{a.ID, b.ID} {
		if _, err := CreateSubscription(ctx, db, uid, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := CreateSubscription(ctx, db, a.ID, other.ID); err != nil {
		t.Fatal(err)
	}

	subs, err := ListSubscribers(ctx, db, p.ID)
	if err != nil || len(subs) != 2 {
		t.Fatalf("ListSubscribers: %v %+v", err, subs)
	}
	emails := map[string]bool{subs[0].User.Email: true, subs[1].User.Email: true}
	if !emails["a@example.com"] || !emails["b@example.com"] {
		t.Fatalf("users not loaded: %+v", subs)
	}
}

func TestNotifications_BatchInsertAndPage(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	p := seedProduct(t, db, "zlatna-1", "One")
	s := seedStore(t, db, "S", nil)

	if err := CreateNotifications(ctx, db, nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}

	rows := make([]domain.PriceAlertNotification, 0, 3)
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		rows = append(rows, domain.PriceAlertNotification{
			UserID: u.ID, ProductID: p.ID, StoreID: s.ID,
			FromAmount: decimal.NewFromInt(10), ToAmount: decimal.NewFromInt(int64(9 - i)),
			Currency: "EUR", RecordedAt: base, CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := CreateNotifications(ctx, db, rows); err != nil {
		t.Fatalf("CreateNotifications: %v", err)
	}

	total, _ := CountNotifications(ctx, db, u.ID)
	if total != 3 {
		t.Fatalf("CountNotifications = %d", total)
	}
	page, err := ListNotificationsPage(ctx, db, u.ID, 0, 2)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListNotificationsPage: %v %+v", err, page)
	}
	if !page[0].ToAmount.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected newest first, got %+v", page[0])
	}
}
