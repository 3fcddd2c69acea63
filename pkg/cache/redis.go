package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kotkala/EduConnectSystem-sub009/pkg/config"
)

const timetablePrefix = "timetable"

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// TimetableViewKey builds the key of a cached weekly view, e.g.
// timetable:<semester>:class:<id>:week:<n>.
func TimetableViewKey(semesterID, scope, ownerID string, week int) string {
	return strings.Join([]string{timetablePrefix, semesterID, scope, ownerID, "week", fmt.Sprintf("%d", week)}, ":")
}

// SemesterPattern matches every cached view of a semester.
func SemesterPattern(semesterID string) string {
	return fmt.Sprintf("%s:%s:*", timetablePrefix, semesterID)
}
