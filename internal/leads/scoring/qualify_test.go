package scoring

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type qualifyCall struct {
	score  int
	status stage.Status
	stamp  *stage.Stamp
}

// fakeStore records qualification writes so tests can inspect the status and
// stamp the service decided on.
type fakeStore struct {
	lead         repository.Lead
	qualifyCalls []qualifyCall
	notes        []repository.CreateNoteParams
}

func (f *fakeStore) SetScore(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score *int, reasons []string) (repository.Lead, error) {
	return f.lead, nil
}

func (f *fakeStore) ApplyStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status stage.Status, stamp *stage.Stamp) (repository.Lead, error) {
	lead := f.lead
	lead.Status = status
	return lead, nil
}

func (f *fakeStore) ApplyQualification(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score int, reasons []string, status stage.Status, stamp *stage.Stamp) (repository.Lead, error) {
	f.qualifyCalls = append(f.qualifyCalls, qualifyCall{score: score, status: status, stamp: stamp})
	lead := f.lead
	lead.Score = score
	lead.Status = status
	return lead, nil
}

func (f *fakeStore) CreateNote(ctx context.Context, params repository.CreateNoteParams) (repository.Note, error) {
	f.notes = append(f.notes, params)
	return repository.Note{}, nil
}

type policyStub struct{ threshold int }

func (p policyStub) GetQualifyThreshold() int         { return p.threshold }
func (p policyStub) GetFollowupWindow() time.Duration { return 48 * time.Hour }
func (p policyStub) GetNextActionsLimit() int         { return 10 }
func (p policyStub) GetLocation() *time.Location      { return time.UTC }

type recordBus struct {
	published []events.Event
}

func (b *recordBus) Publish(ctx context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordBus) Subscribe(eventName string, handler events.Handler) {}

func TestAutoQualifyStampsBothVerdicts(t *testing.T) {
	lead := repository.Lead{ID: uuid.New(), OrganizationID: uuid.New()}
	store := &fakeStore{lead: lead}
	bus := &recordBus{}
	svc := New(store, bus, policyStub{threshold: 70}, logger.New("test"))

	if _, err := svc.AutoQualify(context.Background(), lead.ID, lead.OrganizationID, AutoQualifyInput{Score: 85}); err != nil {
		t.Fatalf("qualify pass failed: %v", err)
	}
	if _, err := svc.AutoQualify(context.Background(), lead.ID, lead.OrganizationID, AutoQualifyInput{Score: 40}); err != nil {
		t.Fatalf("archive pass failed: %v", err)
	}

	if len(store.qualifyCalls) != 2 {
		t.Fatalf("qualification writes = %d, want 2", len(store.qualifyCalls))
	}
	wantStatus := []stage.Status{stage.StatusQualified, stage.StatusArchived}
	for i, call := range store.qualifyCalls {
		if call.status != wantStatus[i] {
			t.Fatalf("call %d status = %s, want %s", i, call.status, wantStatus[i])
		}
		if call.stamp == nil {
			t.Fatalf("call %d carried no qualified stamp", i)
		}
		if call.stamp.Column != "qualified_at" || call.stamp.Mode != stage.ModeOverwrite {
			t.Fatalf("call %d stamp = %+v, want qualified_at overwrite", i, *call.stamp)
		}
	}

	// Only the passing verdict emits a qualified event.
	if len(bus.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.published))
	}
	qualified, ok := bus.published[0].(events.LeadQualified)
	if !ok {
		t.Fatalf("published event is %T, want LeadQualified", bus.published[0])
	}
	if !qualified.Automated {
		t.Fatalf("event not marked automated")
	}
}

func TestAutoQualifyVerdictAgainstThreshold(t *testing.T) {
	cases := []struct {
		name      string
		score     int
		threshold int
		want      bool
	}{
		{"above threshold", 80, 70, true},
		{"exactly at threshold", 70, 70, true},
		{"below threshold", 69, 70, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := repository.Lead{ID: uuid.New(), OrganizationID: uuid.New()}
			store := &fakeStore{lead: lead}
			svc := New(store, &recordBus{}, policyStub{threshold: tc.threshold}, logger.New("test"))

			result, err := svc.AutoQualify(context.Background(), lead.ID, lead.OrganizationID, AutoQualifyInput{Score: tc.score})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Qualified != tc.want {
				t.Fatalf("Qualified = %v, want %v", result.Qualified, tc.want)
			}
			if result.Threshold != tc.threshold {
				t.Fatalf("Threshold = %d, want %d", result.Threshold, tc.threshold)
			}
		})
	}
}

func TestAutoQualifyRejectsOutOfRangeScore(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, &recordBus{}, policyStub{threshold: 70}, logger.New("test"))

	_, err := svc.AutoQualify(context.Background(), uuid.New(), uuid.New(), AutoQualifyInput{Score: 101})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
	}
	if len(store.qualifyCalls) != 0 {
		t.Fatalf("qualification write happened despite invalid score")
	}
}

func TestAutoQualifyRecordsAnalysisNote(t *testing.T) {
	lead := repository.Lead{ID: uuid.New(), OrganizationID: uuid.New()}
	store := &fakeStore{lead: lead}
	svc := New(store, &recordBus{}, policyStub{threshold: 70}, logger.New("test"))

	analysis := "Strong fit: explicit budget and timeline."
	model := "gemini-2.0-flash"
	if _, err := svc.AutoQualify(context.Background(), lead.ID, lead.OrganizationID, AutoQualifyInput{
		Score:    90,
		Analysis: &analysis,
		Model:    &model,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.notes) != 1 {
		t.Fatalf("notes recorded = %d, want 1", len(store.notes))
	}
	note := store.notes[0]
	if note.Type != repository.NoteAIAnalysis {
		t.Fatalf("note type = %s, want %s", note.Type, repository.NoteAIAnalysis)
	}
	if note.Content != analysis {
		t.Fatalf("note content = %q", note.Content)
	}
}
