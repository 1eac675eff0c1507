package training

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrea/secureaware/internal/events"
	"github.com/kingrea/secureaware/internal/notification"
	"github.com/kingrea/secureaware/internal/quiz"
)

// Outcome reports what one quiz submission changed.
type Outcome struct {
	Result quiz.Result
	// NewlyCompleted is true when this submission moved the module into the
	// CompletionSet.
	NewlyCompleted bool
	// AlreadyCompleted is true when a passing submission hit a module that
	// was completed earlier.
	AlreadyCompleted bool
}

// SubmitQuiz grades a submission and, on a pass, records the completion.
// Grade, MarkCompleted and the resulting notification run in sequence under
// one lock so no other mutation interleaves. An incomplete submission is
// rejected with *quiz.IncompleteSubmissionError and changes nothing.
func (s *Service) SubmitQuiz(moduleID string, submission quiz.Submission) (Outcome, error) {
	mod, err := s.catalog.Module(moduleID)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.grader.Grade(mod.Quiz, submission)
	if err != nil {
		if errors.Is(err, quiz.ErrIncompleteSubmission) {
			s.metrics.ObserveIncomplete(mod.ID)
			s.logger.Debug("quiz submission incomplete", zap.String("module_id", mod.ID), zap.Error(err))
		}
		return Outcome{}, err
	}
	s.metrics.ObserveQuiz(mod.ID, result.Score, result.Passed)
	s.logger.Info("quiz graded",
		zap.String("module_id", mod.ID),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.Passed),
	)

	out := Outcome{Result: result}
	if !result.Passed {
		_ = s.journal.Info("quiz %s scored %.0f%% (%d/%d), not passed", mod.ID, result.Score, result.Correct, result.Total)
		return out, nil
	}
	_ = s.journal.Info("quiz %s scored %.0f%% (%d/%d), passed", mod.ID, result.Score, result.Correct, result.Total)

	mark, err := s.progress.MarkCompleted(mod.ID)
	if err != nil {
		return out, fmt.Errorf("training: record completion: %w", err)
	}
	out.AlreadyCompleted = mark.AlreadyCompleted
	out.NewlyCompleted = !mark.AlreadyCompleted
	if out.NewlyCompleted {
		s.refreshCompletionGauge()
	}
	return out, nil
}

// handleModuleCompleted runs synchronously inside MarkCompleted's publish.
// The completion is already recorded; a module missing from the catalog gets
// no notification.
func (s *Service) handleModuleCompleted(e events.Event) error {
	if s.metrics != nil {
		s.metrics.ModulesCompleted.Inc()
	}
	mod, err := s.catalog.Module(e.ModuleID)
	if err != nil {
		s.logger.Warn("completed module not in catalog", zap.String("module_id", e.ModuleID))
		_ = s.journal.Warn("completed unknown module %s", e.ModuleID)
		return nil
	}
	s.center.Emit(notification.Notification{
		Title:   notification.TitleModuleCompleted,
		Message: notification.ModuleCompletedMessage(mod.Title),
		Type:    notification.TypeSuccess,
		Date:    e.OccurredAt,
	})
	_ = s.journal.Info("completed module %s", mod.ID)

	if s.issuer.Stable() {
		cert, err := s.issuer.Issue(mod.ID)
		if err != nil {
			return err
		}
		_ = s.journal.Info("issued certificate %s for %s", cert.CertificateNumber, mod.ID)
	}
	return nil
}

func (s *Service) handleProfileEvent(e events.Event) error {
	switch e.Type {
	case events.ProfileUpdated:
		s.center.Emit(notification.Notification{
			Title:   notification.TitleProfileUpdated,
			Message: "Your profile information has been updated successfully.",
			Type:    notification.TypeInfo,
			Date:    e.OccurredAt,
		})
	case events.PasswordUpdated:
		s.center.Emit(notification.Notification{
			Title:   notification.TitlePasswordUpdated,
			Message: "Your password has been changed successfully.",
			Type:    notification.TypeSuccess,
			Date:    e.OccurredAt,
		})
	}
	return nil
}
