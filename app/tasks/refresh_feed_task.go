package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ostrenko/feedcast/app/database"
	"github.com/ostrenko/feedcast/app/reader"
)

// RefreshFeedTask runs one synchronization cycle for a stale feed so the
// article cache is warm before users ask for it.
type RefreshFeedTask struct {
	Task
	Feed   database.Feed
	engine *reader.Engine
}

func NewRefreshFeedTask(f database.Feed, engine *reader.Engine) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:   NewTask(TaskTypeRefreshFeed, f.Name),
		Feed:   f,
		engine: engine,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.engine.Refresh(ctx, &t.Feed); err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration())

	return nil
}
