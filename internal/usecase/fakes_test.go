package usecase

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
	"estate-intake/internal/repository"
)

// memStore is an in-memory stand-in for the DynamoDB repository.
type memStore struct {
	subs    map[string]domain.Submission
	limits  map[string]domain.StateLimit
	drafts  map[string]domain.Draft
	readErr error
	saveErr error
	// draftSaveErrs fail the next SaveDraft calls in order.
	draftSaveErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		subs:   map[string]domain.Submission{},
		limits: map[string]domain.StateLimit{},
		drafts: map[string]domain.Draft{},
	}
}

func (m *memStore) CreateSubmission(_ context.Context, s domain.Submission) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.subs[s.ID]; ok {
		return fmt.Errorf("create: %w", repository.ErrConflict)
	}
	m.subs[s.ID] = s
	return nil
}

func (m *memStore) UpdateSubmission(_ context.Context, s domain.Submission) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.subs[s.ID]; !ok {
		return fmt.Errorf("update: %w", repository.ErrNotFound)
	}
	m.subs[s.ID] = s
	return nil
}

func (m *memStore) GetSubmission(_ context.Context, id string) (domain.Submission, error) {
	if m.readErr != nil {
		return domain.Submission{}, m.readErr
	}
	s, ok := m.subs[id]
	if !ok {
		return domain.Submission{}, fmt.Errorf("get: %w", repository.ErrNotFound)
	}
	return s, nil
}

func (m *memStore) ListSubmissions(_ context.Context) ([]domain.Submission, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []domain.Submission
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListSubmissionsByOwner(ctx context.Context, ownerID string) ([]domain.Submission, error) {
	all, err := m.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Submission
	for _, s := range all {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListStateLimits(_ context.Context) ([]domain.StateLimit, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []domain.StateLimit
	for _, l := range m.limits {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out, nil
}

func (m *memStore) GetStateLimit(_ context.Context, id string) (domain.StateLimit, error) {
	if m.readErr != nil {
		return domain.StateLimit{}, m.readErr
	}
	for _, l := range m.limits {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.StateLimit{}, fmt.Errorf("get limit: %w", repository.ErrNotFound)
}

func (m *memStore) CreateStateLimit(_ context.Context, l domain.StateLimit) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.limits[l.State]; ok {
		return fmt.Errorf("create limit: %w", repository.ErrConflict)
	}
	m.limits[l.State] = l
	return nil
}

func (m *memStore) UpdateStateLimit(_ context.Context, prev, next domain.StateLimit) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.limits[prev.State]; !ok {
		return fmt.Errorf("update limit: %w", repository.ErrNotFound)
	}
	if prev.State != next.State {
		if _, ok := m.limits[next.State]; ok {
			return fmt.Errorf("update limit: %w", repository.ErrConflict)
		}
		delete(m.limits, prev.State)
	}
	m.limits[next.State] = next
	return nil
}

func (m *memStore) DeleteStateLimit(_ context.Context, l domain.StateLimit) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.limits[l.State]; !ok {
		return fmt.Errorf("delete limit: %w", repository.ErrNotFound)
	}
	delete(m.limits, l.State)
	return nil
}

func (m *memStore) SaveDraft(_ context.Context, d domain.Draft) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if len(m.draftSaveErrs) > 0 {
		err := m.draftSaveErrs[0]
		m.draftSaveErrs = m.draftSaveErrs[1:]
		return err
	}
	m.drafts[d.ID] = d
	return nil
}

func (m *memStore) GetDraft(_ context.Context, id string) (domain.Draft, error) {
	if m.readErr != nil {
		return domain.Draft{}, m.readErr
	}
	d, ok := m.drafts[id]
	if !ok {
		return domain.Draft{}, fmt.Errorf("get draft: %w", repository.ErrNotFound)
	}
	return d, nil
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(_ context.Context) error {
	f.calls++
	return f.err
}

// builtInClassifier classifies against the default limits table.
func builtInClassifier() Classifier {
	return referral.NewResolver(nil)
}

func stubIDs(t *testing.T, ids ...string) {
	t.Helper()
	origUUID, origNow := newUUID, now
	i := 0
	newUUID = func() string {
		if i >= len(ids) {
			t.Fatalf("unexpected id request %d", i+1)
		}
		id := ids[i]
		i++
		return id
	}
	now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		newUUID, now = origUUID, origNow
	})
}

func texasForm(values ...int64) domain.IntakeFormData {
	form := domain.IntakeFormData{
		ContactInfo:  &domain.ContactInfo{Name: "Ana Lopez", Email: "ana@example.com"},
		DecedentInfo: &domain.DecedentInfo{Name: "Bo Lopez", DomicileState: "Texas"},
	}
	for _, v := range values {
		form.Assets = append(form.Assets, domain.AssetInfo{
			Type:           domain.AssetBankAccounts,
			EstimatedValue: domain.Dollars(v),
			Ownership:      domain.OwnershipSole,
		})
	}
	return form
}
