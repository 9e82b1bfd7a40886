package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedMessage struct {
	SessionID string
	Role      string
	Text      string
	Phase     Phase
}

type fakeRepo struct {
	mu           sync.Mutex
	sessions     []Session
	messages     []savedMessage
	reports      []ReportRecord
	assessed     []string
	demographics map[string]Demographics
	failWrites   bool
}

var errDown = errors.New("database down")

func (f *fakeRepo) SaveSession(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errDown
	}
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeRepo) SaveMessage(_ context.Context, sessionID, role, text string, phase Phase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errDown
	}
	f.messages = append(f.messages, savedMessage{sessionID, role, text, phase})
	return nil
}

func (f *fakeRepo) SaveReport(_ context.Context, r ReportRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return "", errDown
	}
	f.reports = append(f.reports, r)
	return "report-1", nil
}

func (f *fakeRepo) PatientDemographics(_ context.Context, patientID string) (Demographics, error) {
	d, ok := f.demographics[patientID]
	if !ok {
		return Demographics{}, ErrPatientNotFound
	}
	return d, nil
}

func (f *fakeRepo) MarkAssessed(_ context.Context, patientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errDown
	}
	f.assessed = append(f.assessed, patientID)
	return nil
}

type fakeReports struct {
	sent chan Session
}

func (f *fakeReports) SendDoctorReport(_ context.Context, s Session) error {
	f.sent <- s
	return nil
}

func newTestService(repo Repository, reports ReportService) (Service, *MemoryStore) {
	store := NewMemoryStore(time.Hour)
	engine, _ := newTestEngine()
	svc := NewService(store, engine, repo, reports,
		WithServiceClock(func() time.Time { return fixedNow }))
	return svc, store
}

var assessmentAnswers = []string{
	"Ready to begin",
	"No, none of these conditions",
	"Stiff joints and joint pain every morning",
	"5-6 (Moderate)",
	"Over 1 year",
	"No other symptoms",
	"Fair",
	"Moderate",
	"No digestive issues",
	"Generally good",
	"No significant medical history",
}

func TestService_StartUsesDemographics(t *testing.T) {
	repo := &fakeRepo{demographics: map[string]Demographics{
		"p1": {Name: "Maria Lopez", DOB: "1980-01-01", Gender: "Female"},
	}}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	reply, err := svc.Start(ctx, PatientContext{PatientID: "p1", PractitionerName: "Jones"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, PhaseGreeting, reply.Phase)
	assert.False(t, reply.IsComplete)
	assert.Contains(t, reply.Message, "Maria Lopez")
	assert.Contains(t, reply.Message, "- Age: 46")

	sess, err := svc.Session(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Female", sess.PatientGender)
	assert.Equal(t, "1980-01-01", sess.PatientDOB)

	require.Len(t, repo.sessions, 1)
	require.Len(t, repo.messages, 1)
	assert.Equal(t, roleAssistant, repo.messages[0].Role)
}

func TestService_StartDefaultsUnknownPatient(t *testing.T) {
	svc, _ := newTestService(&fakeRepo{}, nil)

	reply, err := svc.Start(context.Background(), PatientContext{PatientID: "missing"})
	require.NoError(t, err)

	sess, err := svc.Session(context.Background(), reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, DefaultPatientName, sess.PatientName)
	assert.Equal(t, GenderNotSpecified, sess.PatientGender)
	assert.Equal(t, "Unknown", sess.PatientAge)
}

func TestService_CompleteAssessment(t *testing.T) {
	repo := &fakeRepo{}
	reports := &fakeReports{sent: make(chan Session, 1)}
	svc, _ := newTestService(repo, reports)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{PatientID: "p9", PatientName: "Sam", PatientGender: "Male"})
	require.NoError(t, err)

	var reply Reply
	for _, a := range assessmentAnswers {
		reply, err = svc.Advance(ctx, start.SessionID, a)
		require.NoError(t, err)
		assert.Equal(t, start.SessionID, reply.SessionID)
	}

	assert.Equal(t, PhaseReportComplete, reply.Phase)
	assert.True(t, reply.IsComplete)
	assert.Equal(t, "REPORT: Stiff joints and joint pain every morning", reply.Message)
	assert.NotEmpty(t, reply.Choices)

	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "report-1", sess.ReportID)

	require.Len(t, repo.reports, 1)
	rec := repo.reports[0]
	assert.Equal(t, start.SessionID, rec.SessionID)
	assert.Equal(t, 6, rec.Severity)
	assert.Equal(t, "Stiff joints and joint pain every morning", rec.Symptoms)
	assert.NotEmpty(t, rec.TherapyCode)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, []string{"p9"}, repo.assessed)

	// one greeting plus a user and assistant message per answer
	assert.Len(t, repo.messages, 1+2*len(assessmentAnswers))
	assert.Equal(t, PhaseGreeting, repo.messages[1].Phase)
	assert.Equal(t, roleUser, repo.messages[1].Role)

	select {
	case delivered := <-reports.sent:
		assert.Equal(t, start.SessionID, delivered.ID)
		assert.Equal(t, reply.Message, delivered.ReportText)
	case <-time.After(2 * time.Second):
		t.Fatal("report was not delivered")
	}

	again, err := svc.Advance(ctx, start.SessionID, "thanks")
	require.NoError(t, err)
	assert.Equal(t, PhaseReportComplete, again.Phase)
	assert.Len(t, repo.reports, 1)
}

func TestService_PersistenceFailuresDoNotBlock(t *testing.T) {
	repo := &fakeRepo{failWrites: true}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{PatientID: "p1"})
	require.NoError(t, err)

	var reply Reply
	for _, a := range assessmentAnswers {
		reply, err = svc.Advance(ctx, start.SessionID, a)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseReportComplete, reply.Phase)

	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Empty(t, sess.ReportID)
	assert.NotEmpty(t, sess.ReportText)
}

func TestService_WorksWithoutRepository(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{})
	require.NoError(t, err)
	reply, err := svc.Advance(ctx, start.SessionID, "ready")
	require.NoError(t, err)
	assert.Equal(t, PhaseContraindicationCheck, reply.Phase)
}

func TestService_UnknownSessionStartsFresh(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()

	reply, err := svc.Advance(ctx, "does-not-exist", "hello")
	require.NoError(t, err)
	assert.Equal(t, PhaseGreeting, reply.Phase)
	assert.NotEqual(t, "does-not-exist", reply.SessionID)

	reply, err = svc.Advance(ctx, "", "hello")
	require.NoError(t, err)
	assert.Equal(t, PhaseGreeting, reply.Phase)
}

func TestService_RestartFromTerminated(t *testing.T) {
	svc, store := newTestService(nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{PatientName: "Kim", PatientGender: "Female"})
	require.NoError(t, err)
	for _, a := range []string{"ready", "Yes, she is pregnant", "no"} {
		_, err = svc.Advance(ctx, start.SessionID, a)
		require.NoError(t, err)
	}
	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	require.Equal(t, PhaseTerminated, sess.Phase)

	reply, err := svc.Advance(ctx, start.SessionID, "restart")
	require.NoError(t, err)
	assert.Equal(t, PhaseGreeting, reply.Phase)
	assert.NotEqual(t, start.SessionID, reply.SessionID)
	assert.Contains(t, reply.Message, "Kim")

	fresh, err := svc.Session(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Contraindications)
	assert.Empty(t, fresh.Symptoms)
	assert.Equal(t, "Female", fresh.PatientGender)

	_, err = svc.Session(ctx, start.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, store.Len())
}

func TestService_RestartAndCloseActions(t *testing.T) {
	svc, store := newTestService(nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "ready")
	require.NoError(t, err)

	restarted, err := svc.Restart(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, PhaseGreeting, restarted.Phase)

	closed, err := svc.Close(ctx, restarted.SessionID)
	require.NoError(t, err)
	assert.True(t, closed.IsComplete)
	assert.Contains(t, closed.Message, "closed")
	assert.Equal(t, 0, store.Len())

	_, err = svc.Close(ctx, restarted.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Restart(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_ConcurrentTurnsOnOneSession(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "ready")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "no")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "back pain")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "5")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "2 weeks")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, start.SessionID, "yes")
	require.NoError(t, err)

	// Every answer lands in collect_related_symptoms or a lifestyle phase;
	// with serialised turns none is lost.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Advance(ctx, start.SessionID, "Poor")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, PhaseMedicalHistoryPrompt, sess.Phase)
	assert.Equal(t, []string{"back pain", "Poor"}, sess.Symptoms)
	assert.Equal(t, "Sleep quality: Poor, Stress levels: Poor, Digestive health: Poor, Energy: Poor", sess.Lifestyle)
}

// racingStore writes a competing change just before each of the next n
// updates, as another replica would.
type racingStore struct {
	*MemoryStore
	n      int
	mutate func(*Session)
}

func (r *racingStore) Put(ctx context.Context, s *Session) error {
	if r.n > 0 && s.Version > 0 {
		r.n--
		if other, err := r.MemoryStore.Get(ctx, s.ID); err == nil {
			r.mutate(other)
			if err := r.MemoryStore.Put(ctx, other); err != nil {
				return err
			}
		}
	}
	return r.MemoryStore.Put(ctx, s)
}

func TestService_RetriesTurnAfterConcurrentWrite(t *testing.T) {
	store := &racingStore{
		MemoryStore: NewMemoryStore(time.Hour),
		mutate:      func(s *Session) { s.ClinicID = "clinic-7" },
	}
	engine, _ := newTestEngine()
	svc := NewService(store, engine, nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{})
	require.NoError(t, err)

	store.n = 1
	reply, err := svc.Advance(ctx, start.SessionID, "ready")
	require.NoError(t, err)
	assert.Equal(t, PhaseContraindicationCheck, reply.Phase)

	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, PhaseContraindicationCheck, sess.Phase)
	assert.Equal(t, "clinic-7", sess.ClinicID)
}

func TestService_GivesUpOnPersistentConflict(t *testing.T) {
	store := &racingStore{
		MemoryStore: NewMemoryStore(time.Hour),
		mutate:      func(s *Session) { s.ClinicID = "other" },
	}
	engine, _ := newTestEngine()
	svc := NewService(store, engine, nil, nil)
	ctx := context.Background()

	start, err := svc.Start(ctx, PatientContext{})
	require.NoError(t, err)

	store.n = maxTurnAttempts
	_, err = svc.Advance(ctx, start.SessionID, "ready")
	assert.ErrorIs(t, err, ErrVersionConflict)

	sess, err := svc.Session(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, PhaseGreeting, sess.Phase)
}
