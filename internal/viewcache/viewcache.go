package viewcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const viewTTL = 10 * time.Minute

// Cache holds the two rendered display surfaces keyed by project: the
// project's own milestone view and the vendor-facing assignment view. Both
// go stale together after any transition.
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCache(rdb *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{rdb: rdb, logger: logger}
}

func projectViewKey(projectID string) string {
	return "project:view:" + projectID
}

func assignmentViewKey(projectID string) string {
	return "assignment:view:" + projectID
}

// InvalidateProject drops both display surfaces for a project.
func (c *Cache) InvalidateProject(ctx context.Context, projectID string) error {
	return c.rdb.Del(ctx, projectViewKey(projectID), assignmentViewKey(projectID)).Err()
}

// GetProjectView returns the cached rendered project view, or "" on miss.
func (c *Cache) GetProjectView(ctx context.Context, projectID string) string {
	val, err := c.rdb.Get(ctx, projectViewKey(projectID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Project view cache read failed",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
		}
		return ""
	}
	return val
}

// SetProjectView caches the rendered project view. Best effort.
func (c *Cache) SetProjectView(ctx context.Context, projectID, rendered string) {
	if err := c.rdb.Set(ctx, projectViewKey(projectID), rendered, viewTTL).Err(); err != nil {
		c.logger.Warn("Project view cache write failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}
}
