package output

import (
	"context"

	"medi-cal-assistant/internal/domain/entity"
)

type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, turns ...entity.Turn) error
}
