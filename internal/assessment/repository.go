package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

// ReportRecord is the row stored for a rendered report.
type ReportRecord struct {
	SessionID   string
	ClinicID    string
	PatientID   string
	ReportText  string
	TherapyCode string
	TherapyName string
	Severity    int
	// Symptoms is comma separated, in reporting order.
	Symptoms  string
	CreatedAt time.Time
}

// Repository is the durable record of assessments. Every call is best
// effort from the conversation's point of view.
type Repository interface {
	SaveSession(ctx context.Context, s Session) error
	SaveMessage(ctx context.Context, sessionID, role, text string, phase Phase) error
	SaveReport(ctx context.Context, r ReportRecord) (string, error)
	PatientDemographics(ctx context.Context, patientID string) (Demographics, error)
	MarkAssessed(ctx context.Context, patientID string) error
}

type postgresRepo struct {
	db *sql.DB
	qb *goqu.Database
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{
		db: db,
		qb: goqu.New("postgres", db),
	}
}

func (r *postgresRepo) SaveSession(ctx context.Context, s Session) error {
	query, args, err := upsertSessionQuery(r.qb, s)
	if err != nil {
		return fmt.Errorf("build session upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func upsertSessionQuery(qb *goqu.Database, s Session) (string, []interface{}, error) {
	symptoms, err := json.Marshal(nonNil(s.Symptoms))
	if err != nil {
		return "", nil, err
	}
	flags, err := json.Marshal(nonNil(s.Contraindications))
	if err != nil {
		return "", nil, err
	}
	therapies, err := json.Marshal(nonNil(s.RecommendedTherapies))
	if err != nil {
		return "", nil, err
	}

	var completed interface{}
	if s.CompletedAt != nil {
		completed = *s.CompletedAt
	}

	updates := goqu.Record{
		"phase":                 string(s.Phase),
		"practitioner_name":     s.PractitionerName,
		"patient_name":          s.PatientName,
		"primary_concern":       s.PrimaryConcern,
		"severity":              s.Severity,
		"duration":              s.Duration,
		"symptoms":              string(symptoms),
		"lifestyle":             s.Lifestyle,
		"medical_history":       s.MedicalHistory,
		"contraindications":     string(flags),
		"recommended_therapies": string(therapies),
		"updated_at":            s.UpdatedAt,
		"completed_at":          completed,
	}
	row := goqu.Record{
		"id":         s.ID,
		"clinic_id":  nullString(s.ClinicID),
		"patient_id": nullString(s.PatientID),
		"created_at": s.CreatedAt,
	}
	for k, v := range updates {
		row[k] = v
	}

	return qb.Insert("assessment_sessions").
		Rows(row).
		OnConflict(goqu.DoUpdate("id", updates)).
		ToSQL()
}

func (r *postgresRepo) SaveMessage(ctx context.Context, sessionID, role, text string, phase Phase) error {
	query, args, err := r.qb.Insert("assessment_messages").Rows(goqu.Record{
		"session_id": sessionID,
		"role":       role,
		"content":    text,
		"phase":      string(phase),
		"created_at": time.Now().UTC(),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build message insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save message for %s: %w", sessionID, err)
	}
	return nil
}

func (r *postgresRepo) SaveReport(ctx context.Context, rec ReportRecord) (string, error) {
	id := uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.qb.Insert("assessment_reports").Rows(goqu.Record{
		"id":           id,
		"session_id":   rec.SessionID,
		"clinic_id":    nullString(rec.ClinicID),
		"patient_id":   nullString(rec.PatientID),
		"report_text":  rec.ReportText,
		"therapy_code": rec.TherapyCode,
		"therapy_name": rec.TherapyName,
		"severity":     rec.Severity,
		"symptoms":     rec.Symptoms,
		"created_at":   rec.CreatedAt,
	}).ToSQL()
	if err != nil {
		return "", fmt.Errorf("build report insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save report for %s: %w", rec.SessionID, err)
	}
	return id, nil
}

func (r *postgresRepo) PatientDemographics(ctx context.Context, patientID string) (Demographics, error) {
	query, args, err := r.qb.Select("name", "date_of_birth", "gender").
		From("patients").
		Where(goqu.Ex{"id": patientID}).
		ToSQL()
	if err != nil {
		return Demographics{}, fmt.Errorf("build patient query: %w", err)
	}

	var (
		name, gender sql.NullString
		dob          sql.NullTime
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&name, &dob, &gender)
	if errors.Is(err, sql.ErrNoRows) {
		return Demographics{}, ErrPatientNotFound
	}
	if err != nil {
		return Demographics{}, fmt.Errorf("get patient %s: %w", patientID, err)
	}

	d := Demographics{Name: name.String, Gender: gender.String}
	if dob.Valid {
		d.DOB = dob.Time.Format("2006-01-02")
	}
	return d, nil
}

func (r *postgresRepo) MarkAssessed(ctx context.Context, patientID string) error {
	query, args, err := r.qb.Update("patients").
		Set(goqu.Record{"last_assessment_date": time.Now().UTC()}).
		Where(goqu.Ex{"id": patientID}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build patient update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark patient %s assessed: %w", patientID, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
