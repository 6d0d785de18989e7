package waitlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection holding signups.
const DefaultCollection = "waitlist"

// FirestoreStore implements Store on a Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient connects to Firestore. An empty credentials file falls
// back to Application Default Credentials.
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	if credentialsFile != "" {
		return firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	}
	return firestore.NewClient(ctx, projectID)
}

// NewFirestoreStore wraps a Firestore client as a Store.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if strings.TrimSpace(collection) == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// Join implements Store.
func (s *FirestoreStore) Join(ctx context.Context, entry *Entry) error {
	existing := s.col().Where("email", "==", entry.Email).Limit(1).Documents(ctx)
	defer existing.Stop()
	if _, errNext := existing.Next(); errNext == nil {
		return ErrDuplicate
	} else if errNext != iterator.Done {
		return fmt.Errorf("waitlist: lookup email: %w", errNext)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, errCreate := s.col().Doc(entry.ID).Create(ctx, entry); errCreate != nil {
		if status.Code(errCreate) == codes.AlreadyExists {
			return ErrDuplicate
		}
		return fmt.Errorf("waitlist: create entry: %w", errCreate)
	}
	return nil
}

// List implements Store. Search is a lowercase prefix match on email;
// Firestore has no substring operator, so the range trick on the email
// field stands in for ILIKE.
func (s *FirestoreStore) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := s.col().Query
	search := strings.ToLower(strings.TrimSpace(params.Search))
	if search != "" {
		query = query.Where("email", ">=", search).Where("email", "<", search+"\uf8ff")
	}

	total, errCount := s.count(ctx, query)
	if errCount != nil {
		return nil, errCount
	}

	sortField := params.Sort
	switch sortField {
	case "email", "created_at":
	default:
		sortField = "created_at"
	}
	// A range filter forces the first order-by onto the filtered field.
	if search != "" {
		sortField = "email"
	}
	direction := firestore.Desc
	if strings.EqualFold(params.Order, "asc") {
		direction = firestore.Asc
	}
	query = query.OrderBy(sortField, direction)

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 50
	}
	query = query.Offset((page - 1) * limit).Limit(limit)

	docs := query.Documents(ctx)
	defer docs.Stop()
	entries := make([]Entry, 0, limit)
	for {
		doc, errNext := docs.Next()
		if errNext == iterator.Done {
			break
		}
		if errNext != nil {
			return nil, fmt.Errorf("waitlist: list entries: %w", errNext)
		}
		var entry Entry
		if errDecode := doc.DataTo(&entry); errDecode != nil {
			return nil, fmt.Errorf("waitlist: decode entry %s: %w", doc.Ref.ID, errDecode)
		}
		entry.ID = doc.Ref.ID
		entries = append(entries, entry)
	}
	return &ListResult{Entries: entries, Total: total}, nil
}

// Delete implements Store. Deleting an absent document is a no-op in
// Firestore, so the returned count is the number requested.
func (s *FirestoreStore) Delete(ctx context.Context, ids []string) (int, error) {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, errDelete := s.col().Doc(id).Delete(ctx); errDelete != nil {
			return 0, fmt.Errorf("waitlist: delete entry %s: %w", id, errDelete)
		}
	}
	return len(ids), nil
}

// Stats implements Store.
func (s *FirestoreStore) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	now = now.UTC()
	total, errTotal := s.count(ctx, s.col().Query)
	if errTotal != nil {
		return nil, errTotal
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, errToday := s.count(ctx, s.col().Where("created_at", ">=", startOfDay))
	if errToday != nil {
		return nil, errToday
	}

	windowStart := startOfDay.AddDate(0, 0, -(ChartDays - 1))
	docs := s.col().Where("created_at", ">=", windowStart).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer docs.Stop()
	daily := make(map[string]int)
	for {
		doc, errNext := docs.Next()
		if errNext == iterator.Done {
			break
		}
		if errNext != nil {
			return nil, fmt.Errorf("waitlist: stats scan: %w", errNext)
		}
		var entry Entry
		if errDecode := doc.DataTo(&entry); errDecode != nil {
			return nil, fmt.Errorf("waitlist: decode entry %s: %w", doc.Ref.ID, errDecode)
		}
		daily[entry.CreatedAt.UTC().Format("2006-01-02")]++
	}

	return &Stats{
		TotalSignups: total,
		TodaySignups: today,
		ChartData:    BuildChart(daily, now),
	}, nil
}

func (s *FirestoreStore) count(ctx context.Context, query firestore.Query) (int, error) {
	docs := query.Select().Documents(ctx)
	defer docs.Stop()
	total := 0
	for {
		_, errNext := docs.Next()
		if errNext == iterator.Done {
			return total, nil
		}
		if errNext != nil {
			return 0, fmt.Errorf("waitlist: count entries: %w", errNext)
		}
		total++
	}
}
