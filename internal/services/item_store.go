package services

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"itemViewerBack/internal/models"
	"itemViewerBack/internal/repositories"
)

const (
	permissionDeniedWarning = "Could not load your wardrobe: the database denied access. Showing sample items instead. " +
		"Check your Firestore security rules (for development: allow read, write: if true)."
	readFailedWarning  = "Could not refresh your wardrobe from the database. Showing the last known items."
	writeDeniedMessage = "The database denied this change. Check your Firestore security rules " +
		"(for development: allow read, write: if true)."
	writeFailedMessage = "Could not save your change to the database. Please try again."
)

// ItemSource is the remote collection behind the store.
type ItemSource interface {
	Watch(ctx context.Context, onSnapshot func([]models.Item), onError func(error))
	Add(ctx context.Context, in models.ItemInput) (string, error)
	Delete(ctx context.Context, id string) error
}

// ItemStore owns the published list of items. In connected mode the list
// follows the remote live query merged with the seed catalog; in fallback
// mode it is the seed catalog plus local, non-persistent mutations.
type ItemStore struct {
	source    ItemSource
	connected bool
	seed      []models.Item
	infoLog   *log.Logger
	errorLog  *log.Logger
	now       func() time.Time

	mu        sync.RWMutex
	items     []models.Item
	live      []models.Item
	loading   bool
	warning   string
	published time.Time
	listeners map[int]chan models.StoreState
	nextID    int
}

// NewItemStore builds a store. connected reports whether a remote project is
// configured; source may be nil in connected mode when the client could not
// be created, in which case reads fall back to the seed catalog and writes
// fail with models.ErrRemoteNotConfigured.
func NewItemStore(source ItemSource, connected bool, seed []models.Item, infoLog, errorLog *log.Logger) *ItemStore {
	s := &ItemStore{
		source:    source,
		connected: connected,
		seed:      cloneItems(seed),
		infoLog:   infoLog,
		errorLog:  errorLog,
		now:       time.Now,
		listeners: make(map[int]chan models.StoreState),
	}
	s.items = cloneItems(s.seed)
	s.loading = connected && source != nil
	s.published = s.now()
	return s
}

func (s *ItemStore) Mode() models.StoreMode {
	if s.connected {
		return models.StoreModeConnected
	}
	return models.StoreModeFallback
}

// Subscribe starts following the remote collection. The returned func
// stops the subscription; it is safe to call more than once.
func (s *ItemStore) Subscribe(ctx context.Context) func() {
	if !s.connected {
		s.logInfo("remote project not configured, serving sample items")
		s.publish(cloneItems(s.seed), false, "")
		return func() {}
	}
	if s.source == nil {
		s.logError("remote project configured but no database client is available, serving sample items")
		s.publish(cloneItems(s.seed), false, readFailedWarning)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.source.Watch(ctx, s.applySnapshot, s.applyWatchError)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *ItemStore) applySnapshot(live []models.Item) {
	merged := MergeWithSeed(live, s.seed)

	s.mu.Lock()
	s.live = cloneItems(live)
	s.publishLocked(merged, false, "")
	s.mu.Unlock()
}

func (s *ItemStore) applyWatchError(err error) {
	if repositories.IsPermissionDenied(err) {
		s.logError("item subscription denied, falling back to sample items: %v", err)
		s.mu.Lock()
		s.live = nil
		s.publishLocked(cloneItems(s.seed), false, permissionDeniedWarning)
		s.mu.Unlock()
		return
	}

	s.logError("item subscription failed: %v", err)
	s.mu.Lock()
	s.publishLocked(s.items, false, readFailedWarning)
	s.mu.Unlock()
}

// Add creates an item. Remote failures are reported in the result; the only
// returned error is models.ErrRemoteNotConfigured.
func (s *ItemStore) Add(ctx context.Context, in models.ItemInput) (models.MutationResult, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return models.MutationResult{Success: false, Error: models.ErrInvalidItem.Error()}, nil
	}

	if !s.connected {
		s.mu.Lock()
		id := s.localIDLocked()
		items := make([]models.Item, 0, len(s.items)+1)
		items = append(items, in.WithID(id))
		items = append(items, s.items...)
		s.publishLocked(items, false, s.warning)
		s.mu.Unlock()
		return models.MutationResult{Success: true, ID: id}, nil
	}
	if s.source == nil {
		return models.MutationResult{}, models.ErrRemoteNotConfigured
	}

	id, err := s.source.Add(ctx, in)
	if err != nil {
		return s.failure("add item", err), nil
	}
	return models.MutationResult{Success: true, ID: id}, nil
}

// Delete removes an item by id.
func (s *ItemStore) Delete(ctx context.Context, id string) (models.MutationResult, error) {
	if !s.connected {
		s.mu.Lock()
		idx := indexOf(s.items, id)
		if idx < 0 {
			s.mu.Unlock()
			return models.MutationResult{Success: false, Error: models.ErrItemNotFound.Error(), NotFound: true}, nil
		}
		items := make([]models.Item, 0, len(s.items)-1)
		items = append(items, s.items[:idx]...)
		items = append(items, s.items[idx+1:]...)
		s.publishLocked(items, false, s.warning)
		s.mu.Unlock()
		return models.MutationResult{Success: true, ID: id}, nil
	}
	if s.source == nil {
		return models.MutationResult{}, models.ErrRemoteNotConfigured
	}

	s.mu.RLock()
	isLive := indexOf(s.live, id) >= 0
	s.mu.RUnlock()
	if !isLive && indexOf(s.seed, id) >= 0 {
		return models.MutationResult{Success: false, ID: id, Error: models.ErrSeedItemReadOnly.Error()}, nil
	}

	if err := s.source.Delete(ctx, id); err != nil {
		return s.failure("delete item", err), nil
	}
	return models.MutationResult{Success: true, ID: id}, nil
}

func (s *ItemStore) failure(op string, err error) models.MutationResult {
	if repositories.IsPermissionDenied(err) {
		s.logError("%s denied: %v", op, err)
		s.setWarning(writeDeniedMessage)
		return models.MutationResult{Success: false, Error: writeDeniedMessage, PermissionDenied: true}
	}
	s.logError("%s failed: %v", op, err)
	s.setWarning(writeFailedMessage)
	return models.MutationResult{Success: false, Error: err.Error()}
}

// LookupByID scans the published list.
func (s *ItemStore) LookupByID(id string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := indexOf(s.items, id); idx >= 0 {
		return cloneItem(s.items[idx]), true
	}
	return models.Item{}, false
}

func (s *ItemStore) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

func (s *ItemStore) State() models.StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *ItemStore) stateLocked() models.StoreState {
	return models.StoreState{
		Items:       cloneItems(s.items),
		Loading:     s.loading,
		Warning:     s.warning,
		Mode:        s.Mode(),
		PublishedAt: s.published,
	}
}

// Listen registers for state updates. The channel holds at most one pending
// state; a newer publish replaces one the listener has not read yet.
func (s *ItemStore) Listen() (<-chan models.StoreState, func()) {
	ch := make(chan models.StoreState, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = ch
	ch <- s.stateLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *ItemStore) setWarning(warning string) {
	s.mu.Lock()
	s.warning = warning
	s.broadcastLocked(s.stateLocked())
	s.mu.Unlock()
}

func (s *ItemStore) publish(items []models.Item, loading bool, warning string) {
	s.mu.Lock()
	s.publishLocked(items, loading, warning)
	s.mu.Unlock()
}

// publishLocked replaces the published list wholesale and notifies listeners.
func (s *ItemStore) publishLocked(items []models.Item, loading bool, warning string) {
	s.items = items
	s.loading = loading
	s.warning = warning
	s.published = s.now()
	s.broadcastLocked(s.stateLocked())
}

func (s *ItemStore) broadcastLocked(state models.StoreState) {
	for _, ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}

// localIDLocked derives an id from the current time, bumped until it is
// unique within the published list.
func (s *ItemStore) localIDLocked() string {
	ts := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ts, 10)
		if indexOf(s.items, id) < 0 {
			return id
		}
		ts++
	}
}

func (s *ItemStore) logInfo(format string, args ...interface{}) {
	if s.infoLog != nil {
		s.infoLog.Printf(format, args...)
	}
}

func (s *ItemStore) logError(format string, args ...interface{}) {
	if s.errorLog != nil {
		s.errorLog.Printf(format, args...)
	}
}

// MergeWithSeed appends the seed items whose names (and ids) do not already
// appear among the live items. Live order is kept; a name shared by several
// seed items is added once.
func MergeWithSeed(live, seed []models.Item) []models.Item {
	merged := make([]models.Item, 0, len(live)+len(seed))
	names := make(map[string]struct{}, len(live)+len(seed))
	ids := make(map[string]struct{}, len(live)+len(seed))

	for _, item := range live {
		if _, dup := ids[item.ID]; dup {
			continue
		}
		ids[item.ID] = struct{}{}
		names[item.Name] = struct{}{}
		merged = append(merged, cloneItem(item))
	}
	for _, item := range seed {
		if _, dup := names[item.Name]; dup {
			continue
		}
		if _, dup := ids[item.ID]; dup {
			continue
		}
		names[item.Name] = struct{}{}
		ids[item.ID] = struct{}{}
		merged = append(merged, cloneItem(item))
	}
	return merged
}

func indexOf(items []models.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItem(item models.Item) models.Item {
	images := make([]string, len(item.AdditionalImages))
	copy(images, item.AdditionalImages)
	item.AdditionalImages = images
	return item
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	for i := range items {
		out[i] = cloneItem(items[i])
	}
	return out
}
