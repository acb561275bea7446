// Package transcript archives session conversations.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

var (
	_ output.TranscriptStore = (*RedisStore)(nil)
	_ output.TranscriptStore = NopStore{}
)

const keyPrefix = "transcript:"

const imageElided = "[image elided]"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore appends JSON encoded turns to a per-session list that expires
// ttl after the last write.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...entity.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		data, err := EncodeTurn(t)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := Key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript %s: %w", sessionID, err)
	}
	return nil
}

type record struct {
	Role  entity.Role  `json:"role"`
	Parts []partRecord `json:"parts"`
}

type partRecord struct {
	Type    entity.PartType `json:"type"`
	Text    string          `json:"text,omitempty"`
	CallID  string          `json:"call_id,omitempty"`
	Tool    string          `json:"tool,omitempty"`
	Input   map[string]any  `json:"input,omitempty"`
	Outcome string          `json:"outcome,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
	Fields  map[string]any  `json:"fields,omitempty"`
}

// EncodeTurn renders a turn as one JSON line. Image bytes are replaced by a
// marker; screenshots are large and never needed for review.
func EncodeTurn(t entity.Turn) ([]byte, error) {
	rec := record{Role: t.Role, Parts: make([]partRecord, 0, len(t.Parts))}
	for _, p := range t.Parts {
		pr := partRecord{Type: p.Type, Text: p.Text}
		switch {
		case p.ToolUse != nil:
			pr.CallID, pr.Tool, pr.Input = p.ToolUse.ID, p.ToolUse.Name, p.ToolUse.Input
		case p.ToolResult != nil:
			out := p.ToolResult.Outcome
			pr.CallID, pr.Outcome, pr.IsError, pr.Fields = p.ToolResult.CallID, out.Text, out.IsError(), out.Fields
			if out.Kind == entity.OutcomeImage {
				pr.Outcome = imageElided
			}
		case p.Image != nil:
			pr.Text = imageElided
		}
		rec.Parts = append(rec.Parts, pr)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode turn: %w", err)
	}
	return data, nil
}

// NopStore is used when no redis address is configured.
type NopStore struct{}

func (NopStore) Append(context.Context, string, ...entity.Turn) error {
	return nil
}
