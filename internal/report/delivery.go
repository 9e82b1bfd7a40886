package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wellness-agent/internal/assessment"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// telegramTextLimit is the Bot API cap on message length.
const telegramTextLimit = 4096

// Service delivers completed reports to the practitioner's chat.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	pdf          *PDFBuilder
	logger       zerolog.Logger
}

func NewService(tg TelegramClient, doctorChatID int64, pdf *PDFBuilder, logger zerolog.Logger) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		pdf:          pdf,
		logger:       logger,
	}
}

// SendDoctorReport posts a short summary and the PDF. Without a usable font
// the report text itself is sent instead of the document.
func (s *Service) SendDoctorReport(ctx context.Context, sess assessment.Session) error {
	if err := s.tgClient.SendMessage(ctx, s.doctorChatID, Summary(&sess)); err != nil {
		return fmt.Errorf("send report summary: %w", err)
	}

	doc, err := s.pdf.Build(sess)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("PDF export failed, sending report as text")
		return s.tgClient.SendMessage(ctx, s.doctorChatID, truncate(sess.ReportText, telegramTextLimit))
	}

	fileName := fmt.Sprintf("assessment_%s.pdf", sess.ID)
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, doc, fileName); err != nil {
		return fmt.Errorf("send report document: %w", err)
	}
	return nil
}

// Summary is the one-glance notification for a finished assessment.
func Summary(s *assessment.Session) string {
	therapy := "none"
	if primary, ok := s.PrimaryTherapy(); ok {
		therapy = fmt.Sprintf("%s %s", primary.Therapy.Code, primary.Therapy.Name)
	}
	return fmt.Sprintf(
		"New assessment completed\nPatient: %s\nPrimary complaint: %s\nSeverity: %d/10\nRecommended therapy: %s",
		s.PatientName, s.PrimaryConcern, s.Severity, therapy,
	)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
