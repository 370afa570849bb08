package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"itemViewerBack/internal/models"
)

const itemsCollection = "items"

// ItemRepository is the Firestore-backed remote source of items.
type ItemRepository struct {
	Client   *firestore.Client
	ErrorLog *log.Logger
	// Collection defaults to "items".
	Collection string
}

func (r *ItemRepository) collection() *firestore.CollectionRef {
	name := r.Collection
	if name == "" {
		name = itemsCollection
	}
	return r.Client.Collection(name)
}

func (r *ItemRepository) query() firestore.Query {
	return r.collection().OrderBy(fieldCreatedAt, firestore.Desc)
}

// Watch streams the items collection, newest first, until ctx is done or the
// listener fails. Every snapshot is decoded and handed to onSnapshot in full.
// A listener failure is reported once through onError and ends the watch.
func (r *ItemRepository) Watch(ctx context.Context, onSnapshot func([]models.Item), onError func(error)) {
	it := r.query().Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return
			}
			onError(classifyError("watch items", err))
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			onError(classifyError("read snapshot", err))
			return
		}

		items := make([]models.Item, 0, len(docs))
		for _, doc := range docs {
			item, err := DecodeItem(doc.Ref.ID, doc.Data())
			if err != nil {
				r.logf("skipping malformed item: %v", err)
				continue
			}
			items = append(items, item)
		}
		onSnapshot(items)
	}
}

func (r *ItemRepository) Add(ctx context.Context, in models.ItemInput) (string, error) {
	doc := EncodeItem(in)
	doc[fieldCreatedAt] = firestore.ServerTimestamp

	ref, _, err := r.collection().Add(ctx, doc)
	if err != nil {
		return "", classifyError("add item", err)
	}
	return ref.ID, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection().Doc(id).Delete(ctx); err != nil {
		return classifyError("delete item", err)
	}
	return nil
}

func (r *ItemRepository) logf(format string, args ...interface{}) {
	if r.ErrorLog != nil {
		r.ErrorLog.Printf(format, args...)
	}
}

// classifyError tags security-rule rejections with models.ErrPermissionDenied
// so callers can tell them apart from other remote failures.
func classifyError(op string, err error) error {
	if IsPermissionDenied(err) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrPermissionDenied) {
		return true
	}
	return status.Code(err) == codes.PermissionDenied
}
