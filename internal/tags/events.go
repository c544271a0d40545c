package tags

import (
	"context"
	"log/slog"

	"tagging/internal/tagevents"
	"tagging/pkg/cache"
	"tagging/pkg/logger"
)

// CacheInvalidationHandler drops cached tags whenever another process reports
// a tag change, e.g. an importtags run that could not reach Redis itself.
func CacheInvalidationHandler(c cache.Service, log *logger.Logger) tagevents.Handler {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(ctx context.Context, event *tagevents.Event) error {
		switch event.Type {
		case tagevents.EventTypeTagsJoined, tagevents.EventTypeTagsImported, tagevents.EventTypeTagDeleted:
		default:
			return nil
		}

		if err := InvalidateTagCache(ctx, c); err != nil {
			return err
		}
		log.DebugContext(ctx, "Tag cache invalidated by event",
			slog.String("type", string(event.Type)),
			slog.String("event_id", event.ID.String()),
		)
		return nil
	}
}
