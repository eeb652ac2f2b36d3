package storage

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	value, ok, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("expected missing key, got ok=%v value=%q", ok, value)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(KeyCart, `[{"product_id":"p1"}]`); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	value, ok, err := store.Get(KeyCart)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok || value != `[{"product_id":"p1"}]` {
		t.Fatalf("unexpected value: ok=%v value=%q", ok, value)
	}
}

func TestPutReplacesExistingValue(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("k", "old"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put("k", "new"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	value, ok, _ := store.Get("k")
	if !ok || value != "new" {
		t.Fatalf("expected replaced value, got ok=%v value=%q", ok, value)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	store := openTestStore(t)

	if err := store.Delete("absent"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(KeyAuthToken, "token"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Delete(KeyAuthToken); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	_, ok, _ := store.Get(KeyAuthToken)
	if ok {
		t.Fatal("expected key to be gone after delete")
	}
}
