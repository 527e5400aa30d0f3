package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/pkg/config"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

func bar(id string, price string, qty int) Item {
	return Item{ID: id, Name: "Bar " + id, PriceRM: decimal.RequireFromString(price), Image: "/images/" + id + ".png", Quantity: qty}
}

func TestAddItemMergesById(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStorage(), nil)

	if err := c.AddItem(ctx, bar("p1", "350.75", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddItem(ctx, bar("p1", "350.75", 2)); err != nil {
		t.Fatalf("add again: %v", err)
	}

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", items[0].Quantity)
	}
	if c.Count() != 3 {
		t.Fatalf("expected count 3, got %d", c.Count())
	}
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	c := New(NewMemoryStorage(), nil)
	err := c.AddItem(context.Background(), bar("p1", "10", 0))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("cart should stay empty")
	}
}

func TestSetQuantityBelowOneIsNoop(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStorage(), nil)
	if err := c.AddItem(ctx, bar("p1", "100", 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, qty := range []int{0, -1} {
		if err := c.SetQuantity(ctx, "p1", qty); err != nil {
			t.Fatalf("set quantity %d: %v", qty, err)
		}
		if got := c.Items()[0].Quantity; got != 2 {
			t.Fatalf("quantity %d should be ignored, got %d", qty, got)
		}
	}

	if err := c.SetQuantity(ctx, "p1", 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestSubtotalRecomputed(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStorage(), nil)
	_ = c.AddItem(ctx, bar("p1", "350.75", 2))
	_ = c.AddItem(ctx, bar("p2", "1753.75", 1))

	if want := decimal.RequireFromString("2455.25"); !c.Subtotal().Equal(want) {
		t.Fatalf("expected subtotal %s, got %s", want, c.Subtotal())
	}

	_ = c.SetQuantity(ctx, "p1", 1)
	_ = c.RemoveItem(ctx, "p2")
	if want := decimal.RequireFromString("350.75"); !c.Subtotal().Equal(want) {
		t.Fatalf("expected subtotal %s after edits, got %s", want, c.Subtotal())
	}

	view := c.View()
	if view.SubtotalDisplay != "RM350.75" || view.Count != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStorage(), nil)
	_ = c.AddItem(ctx, bar("p1", "1", 1))
	if err := c.RemoveItem(ctx, "missing"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items()) != 1 {
		t.Fatal("expected cart unchanged")
	}
}

func TestStorageRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	c := New(storage, nil)
	for _, id := range []string{"c", "a", "b"} {
		if err := c.AddItem(ctx, bar(id, "1", 1)); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	reloaded := New(storage, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	items := reloaded.Items()
	if len(items) != 3 || items[0].ID != "c" || items[1].ID != "a" || items[2].ID != "b" {
		t.Fatalf("expected insertion order c,a,b got %+v", items)
	}
}

func TestEveryMutationPersistsFullList(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	c := New(storage, nil)
	_ = c.AddItem(ctx, bar("p1", "1", 1))
	_ = c.AddItem(ctx, bar("p2", "1", 1))
	_ = c.Clear(ctx)

	raw, _ := storage.Load(ctx)
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decode stored cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected cleared cart persisted, got %d items", len(items))
	}
	if string(raw) != "[]" {
		t.Fatalf("expected empty json array, got %s", raw)
	}
}

func TestLoadCorruptDataYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.Save(ctx, []byte("{not json"))

	c := New(storage, nil)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("corrupt data should not fail load: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart")
	}
}

type failingStorage struct{ MemoryStorage }

func (f *failingStorage) Save(context.Context, []byte) error { return errors.New("disk full") }

func TestFailedSaveDoesNotCommit(t *testing.T) {
	c := New(&failingStorage{}, nil)
	err := c.AddItem(context.Background(), bar("p1", "1", 1))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("failed write must not change the cart")
	}
}

type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) CartKey(sessionID string) string { return "gs:cart:" + sessionID }

func TestRedisStoreOpensPerSession(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := NewRedisStore(fake, time.Hour, nil)

	c, err := store.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("new session should be empty")
	}
	if err := c.AddItem(ctx, bar("p1", "350.75", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := fake.data["gs:cart:s1"]; !ok {
		t.Fatal("expected cart stored under session key")
	}
	if fake.ttls["gs:cart:s1"] != time.Hour {
		t.Fatalf("expected ttl applied, got %v", fake.ttls["gs:cart:s1"])
	}

	again, err := store.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Count() != 1 {
		t.Fatalf("expected persisted item, got %d", again.Count())
	}

	other, _ := store.Open(ctx, "s2")
	if !other.IsEmpty() {
		t.Fatal("sessions must not share carts")
	}
}

func TestSessionIssuerRoundTrip(t *testing.T) {
	issuer, err := NewSessionIssuer(config.CartConfig{TokenSecret: "secret", TokenIssuer: "goldstore-cart", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	sessionID, token, err := issuer.NewSession()
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	got, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != sessionID {
		t.Fatalf("expected %s, got %s", sessionID, got)
	}

	other, _ := NewSessionIssuer(config.CartConfig{TokenSecret: "different", TokenIssuer: "goldstore-cart"})
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestSessionIssuerRejectsExpired(t *testing.T) {
	issuer, _ := NewSessionIssuer(config.CartConfig{TokenSecret: "secret", TokenIssuer: "goldstore-cart", TokenTTL: time.Minute})
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Issue("s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
