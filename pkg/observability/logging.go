package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/swallow/pkg/domain"
)

// LoggingHooks logs document and transformation progress at debug level and
// failures at warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBeginDocument: func(ctx context.Context, e *domain.DocumentEvent) {
			logger.DebugContext(ctx, "document_begin",
				"unit_id", e.UnitID,
				"document", e.Document,
				"transformations", e.Transformations,
			)
		},
		OnFinishDocument: func(ctx context.Context, e *domain.DocumentEvent) {
			logger.DebugContext(ctx, "document_finish", "unit_id", e.UnitID, "document", e.Document)
		},
		OnFinishTransformation: func(ctx context.Context, e *domain.TransformationEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "transformation_failed",
					"unit_id", e.UnitID,
					"document", e.Document,
					"transformation", e.Transformation,
					"index", e.Index,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "transformation_finish",
				"document", e.Document,
				"transformation", e.Transformation,
				"duration", e.Duration,
			)
		},
	}
}
