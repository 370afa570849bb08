package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"itemViewerBack/internal/models"
)

type fakeSource struct {
	mu         sync.Mutex
	onSnapshot func([]models.Item)
	onError    func(error)
	ready      chan struct{}

	addID     string
	addErr    error
	deleteErr error
	added     []models.ItemInput
	deleted   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{ready: make(chan struct{}), addID: "remote-1"}
}

func (f *fakeSource) Watch(ctx context.Context, onSnapshot func([]models.Item), onError func(error)) {
	f.mu.Lock()
	f.onSnapshot = onSnapshot
	f.onError = onError
	f.mu.Unlock()
	close(f.ready)
	<-ctx.Done()
}

func (f *fakeSource) emit(items []models.Item) {
	f.mu.Lock()
	cb := f.onSnapshot
	f.mu.Unlock()
	cb(items)
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()
	cb(err)
}

func (f *fakeSource) Add(ctx context.Context, in models.ItemInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	f.added = append(f.added, in)
	return f.addID, nil
}

func (f *fakeSource) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func item(id, name string) models.Item {
	return models.Item{
		ID:               id,
		Name:             name,
		Type:             models.ItemTypeShirt,
		Description:      "A description long enough",
		CoverImage:       "https://example.com/" + id + ".png",
		AdditionalImages: []string{},
	}
}

func seedABC() []models.Item {
	return []models.Item{item("seed-a", "A"), item("seed-b", "B"), item("seed-c", "C")}
}

func validInput(name string) models.ItemInput {
	return models.ItemInput{
		Name:        name,
		Type:        models.ItemTypePant,
		Description: "Dark denim with a straight leg",
		CoverImage:  "data:image/png;base64,AAAA",
	}
}

func names(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func assertNames(t *testing.T, items []models.Item, want ...string) {
	t.Helper()
	got := names(items)
	if len(got) != len(want) {
		t.Fatalf("expected names %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected names %v, got %v", want, got)
		}
	}
}

func assertUniqueIDs(t *testing.T, items []models.Item) {
	t.Helper()
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %q in %v", it.ID, items)
		}
		seen[it.ID] = true
	}
}

func connectedStore(t *testing.T) (*ItemStore, *fakeSource) {
	t.Helper()
	src := newFakeSource()
	store := NewItemStore(src, true, seedABC(), nil, nil)
	unsubscribe := store.Subscribe(context.Background())
	t.Cleanup(unsubscribe)

	select {
	case <-src.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not start")
	}
	return store, src
}

func TestFallbackPublishesSeedExactly(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)
	store.Subscribe(context.Background())

	state := store.State()
	assertNames(t, state.Items, "A", "B", "C")
	if state.Loading {
		t.Errorf("expected loading=false in fallback mode")
	}
	if state.Warning != "" {
		t.Errorf("expected no warning in fallback mode, got %q", state.Warning)
	}
	if state.Mode != models.StoreModeFallback {
		t.Errorf("expected fallback mode, got %s", state.Mode)
	}
}

func TestConnectedStoreIsLoadingUntilFirstSnapshot(t *testing.T) {
	store, src := connectedStore(t)

	if !store.State().Loading {
		t.Fatalf("expected loading before the first snapshot")
	}
	src.emit(nil)
	if store.State().Loading {
		t.Fatalf("expected loading=false after a snapshot")
	}
}

func TestRemoteItemPrecedesSeed(t *testing.T) {
	store, src := connectedStore(t)

	src.emit([]models.Item{item("d1", "D")})

	items := store.Items()
	assertNames(t, items, "D", "A", "B", "C")
	assertUniqueIDs(t, items)
}

func TestRemoteItemShadowsSeedWithSameName(t *testing.T) {
	store, src := connectedStore(t)

	src.emit([]models.Item{item("remote-a", "A")})

	items := store.Items()
	assertNames(t, items, "A", "B", "C")
	if items[0].ID != "remote-a" {
		t.Fatalf("expected the remote A to win, got id %q", items[0].ID)
	}
}

func TestSnapshotsReplacePublishedList(t *testing.T) {
	store, src := connectedStore(t)

	src.emit([]models.Item{item("d1", "D"), item("e1", "E")})
	src.emit([]models.Item{item("e1", "E")})

	assertNames(t, store.Items(), "E", "A", "B", "C")
}

func TestPermissionDeniedFallsBackToSeedWithWarning(t *testing.T) {
	store, src := connectedStore(t)

	src.emit([]models.Item{item("d1", "D")})
	src.fail(status.Error(codes.PermissionDenied, "missing or insufficient permissions"))

	state := store.State()
	assertNames(t, state.Items, "A", "B", "C")
	if state.Warning == "" {
		t.Fatalf("expected an advisory warning after permission denied")
	}
	if state.Loading {
		t.Fatalf("expected loading=false after permission denied")
	}
}

func TestOtherWatchErrorKeepsLastList(t *testing.T) {
	store, src := connectedStore(t)

	src.emit([]models.Item{item("d1", "D")})
	src.fail(errors.New("unavailable"))

	state := store.State()
	assertNames(t, state.Items, "D", "A", "B", "C")
	if state.Warning == "" {
		t.Fatalf("expected an advisory warning")
	}
}

func TestFallbackAddPrependsItem(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	before := len(store.Items())

	result, err := store.Add(context.Background(), validInput("Jeans"))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !result.Success || result.ID != "1700000000000" {
		t.Fatalf("unexpected result: %+v", result)
	}

	items := store.Items()
	if len(items) != before+1 {
		t.Fatalf("expected %d items, got %d", before+1, len(items))
	}
	if items[0].Name != "Jeans" || items[0].ID != result.ID {
		t.Fatalf("expected new item first, got %+v", items[0])
	}
}

func TestFallbackAddKeepsIDsUnique(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)
	store.now = func() time.Time { return time.UnixMilli(42) }

	first, _ := store.Add(context.Background(), validInput("One"))
	second, _ := store.Add(context.Background(), validInput("Two"))

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both were %q", first.ID)
	}
	assertUniqueIDs(t, store.Items())
}

func TestAddRejectsInvalidInput(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)

	result, err := store.Add(context.Background(), models.ItemInput{Name: "x"})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if result.Success {
		t.Fatalf("expected invalid input to fail")
	}
	if len(store.Items()) != 3 {
		t.Fatalf("expected the list to be unchanged")
	}
}

func TestFallbackDeleteKeepsOrder(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)

	result, err := store.Delete(context.Background(), "seed-b")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
	assertNames(t, store.Items(), "A", "C")
}

func TestFallbackDeleteUnknownID(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)

	result, _ := store.Delete(context.Background(), "missing")
	if result.Success || !result.NotFound {
		t.Fatalf("expected not-found failure, got %+v", result)
	}
	assertNames(t, store.Items(), "A", "B", "C")
}

func TestConnectedAddWaitsForSubscription(t *testing.T) {
	store, src := connectedStore(t)
	src.emit(nil)

	result, err := store.Add(context.Background(), validInput("Jeans"))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !result.Success || result.ID != "remote-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(src.added) != 1 {
		t.Fatalf("expected one remote write, got %d", len(src.added))
	}
	assertNames(t, store.Items(), "A", "B", "C")

	src.emit([]models.Item{item("remote-1", "Jeans")})
	assertNames(t, store.Items(), "Jeans", "A", "B", "C")
}

func TestConnectedAddPermissionDenied(t *testing.T) {
	store, src := connectedStore(t)
	src.addErr = status.Error(codes.PermissionDenied, "denied")

	result, err := store.Add(context.Background(), validInput("Jeans"))
	if err != nil {
		t.Fatalf("expected no returned error, got %v", err)
	}
	if result.Success || !result.PermissionDenied {
		t.Fatalf("expected permission-denied result, got %+v", result)
	}
	if store.State().Warning != writeDeniedMessage {
		t.Fatalf("expected the security-rules advisory, got %q", store.State().Warning)
	}
}

func TestConnectedAddOtherFailure(t *testing.T) {
	store, src := connectedStore(t)
	src.addErr = errors.New("deadline exceeded")

	result, err := store.Add(context.Background(), validInput("Jeans"))
	if err != nil {
		t.Fatalf("expected no returned error, got %v", err)
	}
	if result.Success || result.PermissionDenied || result.Error == "" {
		t.Fatalf("expected a generic failure, got %+v", result)
	}
	if got := store.State().Warning; got != writeFailedMessage {
		t.Fatalf("expected the write-failure advisory, got %q", got)
	}
}

func TestConnectedDeleteOtherFailureSetsAdvisory(t *testing.T) {
	store, src := connectedStore(t)
	src.emit([]models.Item{item("remote-1", "Jeans")})
	src.deleteErr = errors.New("unavailable")

	result, err := store.Delete(context.Background(), "remote-1")
	if err != nil {
		t.Fatalf("expected no returned error, got %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if got := store.State().Warning; got != writeFailedMessage {
		t.Fatalf("expected the write-failure advisory, got %q", got)
	}
}

func TestConnectedWithoutClientFailsHard(t *testing.T) {
	store := NewItemStore(nil, true, seedABC(), nil, nil)
	store.Subscribe(context.Background())

	if _, err := store.Add(context.Background(), validInput("Jeans")); !errors.Is(err, models.ErrRemoteNotConfigured) {
		t.Fatalf("expected ErrRemoteNotConfigured from Add, got %v", err)
	}
	if _, err := store.Delete(context.Background(), "x"); !errors.Is(err, models.ErrRemoteNotConfigured) {
		t.Fatalf("expected ErrRemoteNotConfigured from Delete, got %v", err)
	}
	assertNames(t, store.Items(), "A", "B", "C")
}

func TestConnectedDelete(t *testing.T) {
	store, src := connectedStore(t)
	src.emit([]models.Item{item("d1", "D")})

	result, err := store.Delete(context.Background(), "d1")
	if err != nil || !result.Success {
		t.Fatalf("unexpected delete outcome: %+v, %v", result, err)
	}
	if len(src.deleted) != 1 || src.deleted[0] != "d1" {
		t.Fatalf("expected remote delete of d1, got %v", src.deleted)
	}
}

func TestConnectedDeleteOfSeedItemIsRejected(t *testing.T) {
	store, src := connectedStore(t)
	src.emit(nil)

	result, _ := store.Delete(context.Background(), "seed-a")
	if result.Success {
		t.Fatalf("expected seed delete to be rejected")
	}
	if len(src.deleted) != 0 {
		t.Fatalf("expected no remote delete, got %v", src.deleted)
	}
}

func TestLookupByID(t *testing.T) {
	store := NewItemStore(nil, false, seedABC(), nil, nil)

	got, ok := store.LookupByID("seed-c")
	if !ok || got.Name != "C" {
		t.Fatalf("expected C, got %+v (ok=%v)", got, ok)
	}
	if _, ok := store.LookupByID("nope"); ok {
		t.Fatalf("expected missing id to be absent")
	}
}

func TestListenReceivesPublishes(t *testing.T) {
	store, src := connectedStore(t)
	updates, unlisten := store.Listen()
	defer unlisten()

	initial := <-updates
	if !initial.Loading {
		t.Fatalf("expected the initial state to be loading")
	}

	src.emit([]models.Item{item("d1", "D")})
	select {
	case state := <-updates:
		assertNames(t, state.Items, "D", "A", "B", "C")
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestListenKeepsOnlyLatestPending(t *testing.T) {
	store, src := connectedStore(t)
	updates, unlisten := store.Listen()
	defer unlisten()

	src.emit([]models.Item{item("d1", "D")})
	src.emit([]models.Item{item("e1", "E")})

	state := <-updates
	assertNames(t, state.Items, "E", "A", "B", "C")
	select {
	case extra := <-updates:
		t.Fatalf("expected a single pending state, got another: %v", names(extra.Items))
	default:
	}
}

func TestMergeWithSeedDeduplicatesSeedNames(t *testing.T) {
	seed := []models.Item{item("s1", "A"), item("s2", "A"), item("s3", "B")}
	merged := MergeWithSeed([]models.Item{item("r1", "B")}, seed)

	assertNames(t, merged, "B", "A")
	assertUniqueIDs(t, merged)
}

func TestMergeWithSeedDropsSeedWithCollidingID(t *testing.T) {
	merged := MergeWithSeed([]models.Item{item("seed-a", "Z")}, seedABC())

	assertNames(t, merged, "Z", "B", "C")
	assertUniqueIDs(t, merged)
}
