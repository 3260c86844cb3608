package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type statusCall struct {
	status stage.Status
	stamp  *stage.Stamp
}

// fakeStore stands in for the repository. It treats one source URL as already
// taken so tests can drive the duplicate path, and records writes for
// inspection. Ingest runs its inserts concurrently, hence the mutex.
type fakeStore struct {
	mu          sync.Mutex
	existing    repository.Lead
	takenURL    string
	created     []repository.CreateLeadParams
	statusCalls []statusCall
}

func (f *fakeStore) Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takenURL != "" && params.SourceURL == f.takenURL {
		return repository.Lead{}, repository.ErrDuplicateSourceURL
	}
	f.created = append(f.created, params)
	return repository.Lead{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		SourceURL:      params.SourceURL,
		Title:          params.Title,
		Status:         stage.StatusNew,
	}, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (repository.Lead, error) {
	return f.existing, nil
}

func (f *fakeStore) GetBySourceURL(ctx context.Context, sourceURL string, organizationID uuid.UUID) (repository.Lead, error) {
	if sourceURL != f.takenURL {
		return repository.Lead{}, repository.ErrNotFound
	}
	return f.existing, nil
}

func (f *fakeStore) List(ctx context.Context, organizationID uuid.UUID, params repository.ListLeadsParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) ApplyStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status stage.Status, stamp *stage.Stamp) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{status: status, stamp: stamp})
	lead := f.existing
	lead.Status = status
	return lead, nil
}

func (f *fakeStore) Patch(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, expectedRevision int, params repository.PatchLeadParams) (repository.Lead, error) {
	return f.existing, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	return nil
}

func (f *fakeStore) CreateNote(ctx context.Context, params repository.CreateNoteParams) (repository.Note, error) {
	return repository.Note{}, nil
}

func (f *fakeStore) ListNotes(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]repository.Note, error) {
	return nil, nil
}

type recordBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *recordBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordBus) Subscribe(eventName string, handler events.Handler) {}

func newTestService(store *fakeStore) (*Service, *recordBus) {
	bus := &recordBus{}
	return New(store, bus, logger.New("test")), bus
}

func TestCreateDuplicateReturnsExistingLead(t *testing.T) {
	existing := repository.Lead{
		ID:        uuid.New(),
		SourceURL: "https://reddit.com/r/startups/abc",
		Title:     "Need a dev",
	}
	store := &fakeStore{existing: existing, takenURL: existing.SourceURL}
	svc, bus := newTestService(store)

	lead, err := svc.Create(context.Background(), uuid.New(), CreateLeadInput{
		Source:    "reddit",
		SourceURL: existing.SourceURL,
		Title:     "Need a dev",
	})

	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("error kind = %v, want conflict (err: %v)", apperr.GetKind(err), err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *apperr.Error", err)
	}
	details, ok := appErr.Details.(repository.Lead)
	if !ok {
		t.Fatalf("conflict details = %T, want repository.Lead", appErr.Details)
	}
	if details.ID != existing.ID {
		t.Fatalf("details lead = %s, want existing %s", details.ID, existing.ID)
	}
	if lead.ID != existing.ID {
		t.Fatalf("returned lead = %s, want existing %s", lead.ID, existing.ID)
	}
	if len(bus.published) != 0 {
		t.Fatalf("published %d events on duplicate, want 0", len(bus.published))
	}
}

func TestCreatePublishesLeadCreated(t *testing.T) {
	store := &fakeStore{}
	svc, bus := newTestService(store)

	lead, err := svc.Create(context.Background(), uuid.New(), CreateLeadInput{
		Source:    "reddit",
		SourceURL: "https://reddit.com/r/startups/xyz",
		Title:     "Looking for a Go backend dev",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.published))
	}
	created, ok := bus.published[0].(events.LeadCreated)
	if !ok {
		t.Fatalf("published event is %T, want LeadCreated", bus.published[0])
	}
	if created.LeadID != lead.ID || created.SourceURL != lead.SourceURL {
		t.Fatalf("event = %+v, lead = %+v", created, lead)
	}
}

func TestCreateRejectsMalformedCandidate(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)

	_, err := svc.Create(context.Background(), uuid.New(), CreateLeadInput{
		Source: "reddit",
		Title:  "No source url",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
	}
	if len(store.created) != 0 {
		t.Fatalf("insert happened despite invalid candidate")
	}
}

func TestSetStatusAppliesStampPolicy(t *testing.T) {
	cases := []struct {
		status     stage.Status
		wantColumn string
		wantStamp  bool
	}{
		{stage.StatusContacted, "contacted_at", true},
		{stage.StatusWon, "closed_at", true},
		{stage.StatusNegotiating, "", false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			store := &fakeStore{existing: repository.Lead{ID: uuid.New()}}
			svc, _ := newTestService(store)

			if _, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), tc.status); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(store.statusCalls) != 1 {
				t.Fatalf("status writes = %d, want 1", len(store.statusCalls))
			}
			call := store.statusCalls[0]
			if !tc.wantStamp {
				if call.stamp != nil {
					t.Fatalf("stamp = %+v, want none", *call.stamp)
				}
				return
			}
			if call.stamp == nil {
				t.Fatalf("no stamp for %s", tc.status)
			}
			if call.stamp.Column != tc.wantColumn || call.stamp.Mode != stage.ModeSetIfNull {
				t.Fatalf("stamp = %+v, want %s set-if-null", *call.stamp, tc.wantColumn)
			}
		})
	}
}

func TestIngestTalliesBatchOutcomes(t *testing.T) {
	existing := repository.Lead{
		ID:        uuid.New(),
		SourceURL: "https://reddit.com/r/startups/dup",
		Title:     "Old post",
	}
	store := &fakeStore{existing: existing, takenURL: existing.SourceURL}
	svc, _ := newTestService(store)

	candidates := []CreateLeadInput{
		{Source: "reddit", SourceURL: "https://reddit.com/r/startups/new", Title: "Need a dev"},
		{Source: "reddit", SourceURL: existing.SourceURL, Title: "Old post again"},
		{Source: "reddit", SourceURL: "", Title: "Malformed"},
	}

	summary, err := svc.Ingest(context.Background(), uuid.New(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total != 3 || summary.Created != 1 || summary.Exists != 1 || summary.Failed != 1 {
		t.Fatalf("summary = total %d created %d exists %d failed %d, want 3/1/1/1",
			summary.Total, summary.Created, summary.Exists, summary.Failed)
	}

	for _, item := range summary.Items {
		switch item.Outcome {
		case OutcomeExists:
			if item.LeadID == nil || *item.LeadID != existing.ID {
				t.Fatalf("exists item does not reference the existing lead: %+v", item)
			}
		case OutcomeFailed:
			if item.Error == "" {
				t.Fatalf("failed item carries no error message")
			}
		}
	}
}
