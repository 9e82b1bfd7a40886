package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportService hands a completed assessment to the practitioner.
type ReportService interface {
	SendDoctorReport(ctx context.Context, s Session) error
}

// Reply is the wire answer to one request.
type Reply struct {
	SessionID  string   `json:"sessionId"`
	Message    string   `json:"message"`
	Choices    []string `json:"choices"`
	Phase      Phase    `json:"phase"`
	IsComplete bool     `json:"isComplete"`
}

type Service interface {
	Start(ctx context.Context, pc PatientContext) (Reply, error)
	Advance(ctx context.Context, sessionID, utterance string) (Reply, error)
	Restart(ctx context.Context, sessionID string) (Reply, error)
	Close(ctx context.Context, sessionID string) (Reply, error)
	Session(ctx context.Context, sessionID string) (*Session, error)
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"

	defaultPersistTimeout  = 5 * time.Second
	defaultDeliveryTimeout = time.Minute

	maxTurnAttempts = 3
)

type service struct {
	store   Store
	engine  *Engine
	repo    Repository
	reports ReportService
	locks   *keyedMutex
	logger  zerolog.Logger
	now     func() time.Time

	persistTimeout  time.Duration
	deliveryTimeout time.Duration
	defaultLocale   string
}

type ServiceOption func(*service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *service) { s.logger = l }
}

func WithPersistTimeout(d time.Duration) ServiceOption {
	return func(s *service) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		if locale != "" {
			s.defaultLocale = locale
		}
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *service) { s.now = now }
}

// NewService wires the conversation to its collaborators. repo and reports
// may be nil when persistence or delivery is not configured.
func NewService(store Store, engine *Engine, repo Repository, reports ReportService, opts ...ServiceOption) Service {
	s := &service{
		store:           store,
		engine:          engine,
		repo:            repo,
		reports:         reports,
		locks:           newKeyedMutex(),
		logger:          zerolog.Nop(),
		now:             time.Now,
		persistTimeout:  defaultPersistTimeout,
		deliveryTimeout: defaultDeliveryTimeout,
		defaultLocale:   DefaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Start(ctx context.Context, pc PatientContext) (Reply, error) {
	sess := s.newSession(ctx, pc)

	unlock := s.locks.Lock(sess.ID)
	defer unlock()

	return s.open(ctx, sess)
}

func (s *service) Advance(ctx context.Context, sessionID, utterance string) (Reply, error) {
	if sessionID == "" {
		return s.Start(ctx, PatientContext{})
	}

	for attempt := 1; ; attempt++ {
		reply, err := s.advance(ctx, sessionID, utterance)
		if !errors.Is(err, ErrVersionConflict) || attempt == maxTurnAttempts {
			return reply, err
		}
		s.logger.Warn().
			Str("session_id", sessionID).
			Int("attempt", attempt).
			Msg("session changed by another turn, retrying")
	}
}

// advance runs one turn against the stored session. Nothing outside the
// store is written before Put succeeds, so a conflicting turn can be rerun.
func (s *service) advance(ctx context.Context, sessionID, utterance string) (Reply, error) {
	unlock := s.locks.Lock(sessionID)
	sess, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		unlock()
		s.logger.Info().Str("session_id", sessionID).Msg("unknown session, starting a new one")
		return s.Start(ctx, PatientContext{})
	}
	defer unlock()
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}

	asked := sess.Phase
	turn := s.engine.Advance(sess, utterance)

	switch turn.Request {
	case RequestRestart:
		s.recordMessage(ctx, sess.ID, roleUser, utterance, asked)
		return s.restart(ctx, sess)
	case RequestClose:
		s.recordMessage(ctx, sess.ID, roleUser, utterance, asked)
		return s.close(ctx, sess, turn)
	}

	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}

	if turn.ReportGenerated {
		s.recordReport(ctx, sess)
		if sess.ReportID != "" {
			if err := s.store.Put(ctx, sess); err != nil {
				s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("keep report id on session")
			}
		}
	}

	s.recordMessage(ctx, sess.ID, roleUser, utterance, asked)
	s.recordMessage(ctx, sess.ID, roleAssistant, turn.Message, sess.Phase)
	s.recordSession(ctx, sess)

	if turn.ReportGenerated {
		s.deliver(sess)
		s.logger.Info().
			Str("session_id", sess.ID).
			Str("report_id", sess.ReportID).
			Msg("assessment report generated")
	}

	return replyFor(sess.ID, turn), nil
}

func (s *service) Restart(ctx context.Context, sessionID string) (Reply, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("restart %s: %w", sessionID, err)
	}
	return s.restart(ctx, sess)
}

func (s *service) Close(ctx context.Context, sessionID string) (Reply, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("close %s: %w", sessionID, err)
	}
	return s.close(ctx, sess, s.engine.Farewell(sess))
}

func (s *service) Session(ctx context.Context, sessionID string) (*Session, error) {
	return s.store.Get(ctx, sessionID)
}

// restart discards old and opens a fresh session for the same patient under
// a new id, leaving the old record intact.
func (s *service) restart(ctx context.Context, old *Session) (Reply, error) {
	if err := s.store.Delete(ctx, old.ID); err != nil {
		return Reply{}, fmt.Errorf("discard session: %w", err)
	}
	fresh := s.blankSession(PatientContext{
		ClinicID:         old.ClinicID,
		PatientID:        old.PatientID,
		PatientName:      old.PatientName,
		PatientGender:    old.PatientGender,
		PatientDOB:       old.PatientDOB,
		PractitionerName: old.PractitionerName,
		Locale:           old.Locale,
	})
	fresh.PatientAge = old.PatientAge

	unlock := s.locks.Lock(fresh.ID)
	defer unlock()

	s.logger.Info().Str("session_id", old.ID).Str("new_session_id", fresh.ID).Msg("assessment restarted")
	return s.open(ctx, fresh)
}

func (s *service) close(ctx context.Context, sess *Session, turn Turn) (Reply, error) {
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return Reply{}, fmt.Errorf("discard session: %w", err)
	}
	s.recordMessage(ctx, sess.ID, roleAssistant, turn.Message, sess.Phase)
	return Reply{
		SessionID:  sess.ID,
		Message:    turn.Message,
		Choices:    []string{},
		Phase:      sess.Phase,
		IsComplete: true,
	}, nil
}

func (s *service) open(ctx context.Context, sess *Session) (Reply, error) {
	if err := s.store.Put(ctx, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	turn := s.engine.Greeting(sess)
	s.recordSession(ctx, sess)
	s.recordMessage(ctx, sess.ID, roleAssistant, turn.Message, sess.Phase)
	return replyFor(sess.ID, turn), nil
}

func (s *service) newSession(ctx context.Context, pc PatientContext) *Session {
	if pc.PatientID != "" && s.repo != nil {
		pctx, cancel := s.persistContext(ctx)
		d, err := s.repo.PatientDemographics(pctx, pc.PatientID)
		cancel()
		switch {
		case err == nil:
			pc.PatientName = firstNonEmpty(pc.PatientName, d.Name)
			pc.PatientGender = firstNonEmpty(pc.PatientGender, d.Gender)
			pc.PatientDOB = firstNonEmpty(pc.PatientDOB, d.DOB)
		case errors.Is(err, ErrPatientNotFound):
			s.logger.Info().Str("patient_id", pc.PatientID).Msg("patient not on record, using defaults")
		default:
			s.logger.Warn().Err(err).Str("patient_id", pc.PatientID).Msg("fetch patient demographics")
		}
	}
	return s.blankSession(pc)
}

func (s *service) blankSession(pc PatientContext) *Session {
	now := s.now()
	return &Session{
		ID:               uuid.New().String(),
		Phase:            PhaseGreeting,
		Locale:           firstNonEmpty(pc.Locale, s.defaultLocale),
		ClinicID:         pc.ClinicID,
		PatientID:        pc.PatientID,
		PractitionerName: strings.TrimSpace(pc.PractitionerName),
		PatientName:      firstNonEmpty(strings.TrimSpace(pc.PatientName), DefaultPatientName),
		PatientGender:    firstNonEmpty(strings.TrimSpace(pc.PatientGender), GenderNotSpecified),
		PatientDOB:       pc.PatientDOB,
		PatientAge:       ageFrom(pc.PatientDOB, now),
		Symptoms:         []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *service) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
}

func (s *service) recordSession(ctx context.Context, sess *Session) {
	if s.repo == nil {
		return
	}
	pctx, cancel := s.persistContext(ctx)
	defer cancel()
	if err := s.repo.SaveSession(pctx, *sess.Clone()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("persist session")
	}
}

func (s *service) recordMessage(ctx context.Context, sessionID, role, text string, phase Phase) {
	if s.repo == nil || text == "" {
		return
	}
	pctx, cancel := s.persistContext(ctx)
	defer cancel()
	if err := s.repo.SaveMessage(pctx, sessionID, role, text, phase); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Str("role", role).Msg("persist message")
	}
}

// recordReport stores the report row and stamps the patient. The report id
// is kept on the session when the write succeeds.
func (s *service) recordReport(ctx context.Context, sess *Session) {
	if s.repo == nil {
		return
	}
	rec := ReportRecord{
		SessionID:  sess.ID,
		ClinicID:   sess.ClinicID,
		PatientID:  sess.PatientID,
		ReportText: sess.ReportText,
		Severity:   sess.Severity,
		Symptoms:   strings.Join(sess.Symptoms, ", "),
	}
	if sess.CompletedAt != nil {
		rec.CreatedAt = *sess.CompletedAt
	}
	if primary, ok := sess.PrimaryTherapy(); ok {
		rec.TherapyCode = primary.Therapy.Code
		rec.TherapyName = primary.Therapy.Name
	}

	pctx, cancel := s.persistContext(ctx)
	defer cancel()

	id, err := s.repo.SaveReport(pctx, rec)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("persist report")
	} else {
		sess.ReportID = id
	}

	if sess.PatientID == "" {
		return
	}
	if err := s.repo.MarkAssessed(pctx, sess.PatientID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Str("patient_id", sess.PatientID).Msg("stamp patient assessment date")
	}
}

func (s *service) deliver(sess *Session) {
	if s.reports == nil {
		return
	}
	snapshot := *sess.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
		defer cancel()
		if err := s.reports.SendDoctorReport(ctx, snapshot); err != nil {
			s.logger.Error().Err(err).Str("session_id", snapshot.ID).Msg("deliver report")
			return
		}
		s.logger.Info().Str("session_id", snapshot.ID).Msg("report delivered")
	}()
}

func replyFor(sessionID string, t Turn) Reply {
	choices := t.Choices
	if choices == nil {
		choices = []string{}
	}
	return Reply{
		SessionID:  sessionID,
		Message:    t.Message,
		Choices:    choices,
		Phase:      t.Phase,
		IsComplete: t.Complete,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
