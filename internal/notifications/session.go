package notifications

import (
	"context"
	"log/slog"

	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/session"
)

type sessionNotifier struct {
	svc    Service
	logger *slog.Logger
}

// ForSession adapts svc to the session notifier hook. Delivery failures are
// logged and never affect the session.
func ForSession(svc Service, logger *slog.Logger) session.Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return sessionNotifier{svc: svc, logger: logging.NewComponentLogger(logger, "notifications")}
}

func (n sessionNotifier) SessionFinished(ctx context.Context, snap session.Snapshot) {
	if n.svc == nil {
		return
	}
	var err error
	switch snap.Stage {
	case session.Complete:
		if snap.Result == nil {
			return
		}
		err = n.svc.NotifyAnalysisComplete(ctx, snap.Source.Name, snap.Result.View.Feedback(), snap.Elapsed())
	case session.Error:
		err = n.svc.NotifyAnalysisFailed(ctx, snap.Source.Name, snap.ErrorReason)
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(n.logger, "notification delivery failed", "notify_failed",
			logging.String(logging.FieldSessionID, snap.ID),
			logging.String(logging.FieldStage, snap.Stage.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "analysis result unaffected"),
		)
	}
}
