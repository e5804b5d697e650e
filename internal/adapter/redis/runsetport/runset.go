package runsetport

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/ports/secondary"
)

const (
	ranKeyPrefix    = "testbank:ran:"
	passedKeyPrefix = "testbank:passed:"
)

var _ secondary.RunSetRepository = (*RunSetRepository)(nil)

// RunSetRepository implements the RunSetRepository interface with Redis
// sets. SADD's newly-added count is the atomic conditional-insert that
// lets the caller increment distinct-student counters exactly once per
// (test, student) pair, even when duplicate reports race.
type RunSetRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewRunSetRepository creates a new Redis run-set repository
func NewRunSetRepository(redisClient *redis.Client, logger primary.Logger) *RunSetRepository {
	return &RunSetRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

func ranKey(assignment, name string) string {
	return fmt.Sprintf("%s%s:%s", ranKeyPrefix, assignment, name)
}

func passedKey(assignment, name string) string {
	return fmt.Sprintf("%s%s:%s", passedKeyPrefix, assignment, name)
}

// AddRan records that a student ran a test
func (r *RunSetRepository) AddRan(ctx context.Context, assignment, name, student string) (bool, error) {
	added, err := r.redisClient.SAdd(ctx, ranKey(assignment, name), student).Result()
	if err != nil {
		r.logger.Error("Failed to add student to run set", "assignment", assignment, "name", name, "error", err)
		return false, fmt.Errorf("failed to add student to run set: %w", err)
	}

	return added > 0, nil
}

// AddPassed records that a student passed a test
func (r *RunSetRepository) AddPassed(ctx context.Context, assignment, name, student string) (bool, error) {
	added, err := r.redisClient.SAdd(ctx, passedKey(assignment, name), student).Result()
	if err != nil {
		r.logger.Error("Failed to add student to pass set", "assignment", assignment, "name", name, "error", err)
		return false, fmt.Errorf("failed to add student to pass set: %w", err)
	}

	return added > 0, nil
}

// MembersRan returns the students that have run a test at least once
func (r *RunSetRepository) MembersRan(ctx context.Context, assignment, name string) ([]string, error) {
	members, err := r.redisClient.SMembers(ctx, ranKey(assignment, name)).Result()
	if err != nil {
		r.logger.Error("Failed to get run set members", "assignment", assignment, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get run set members: %w", err)
	}

	return members, nil
}

// MembersPassed returns the students that have passed a test at least once
func (r *RunSetRepository) MembersPassed(ctx context.Context, assignment, name string) ([]string, error) {
	members, err := r.redisClient.SMembers(ctx, passedKey(assignment, name)).Result()
	if err != nil {
		r.logger.Error("Failed to get pass set members", "assignment", assignment, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get pass set members: %w", err)
	}

	return members, nil
}

// Clear removes the run sets of the named tests. Called both on deletion
// and on creation, so a re-created name never inherits the dedup state of
// a deleted predecessor.
func (r *RunSetRepository) Clear(ctx context.Context, assignment string, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, 0, len(names)*2)
	for _, name := range names {
		keys = append(keys, ranKey(assignment, name), passedKey(assignment, name))
	}

	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to clear run sets", "assignment", assignment, "error", err)
		return fmt.Errorf("failed to clear run sets: %w", err)
	}

	return nil
}

// ClearAssignment removes every run set of an assignment
func (r *RunSetRepository) ClearAssignment(ctx context.Context, assignment string) error {
	for _, prefix := range []string{ranKeyPrefix, passedKeyPrefix} {
		if err := r.deleteByPattern(ctx, fmt.Sprintf("%s%s:*", prefix, assignment)); err != nil {
			return err
		}
	}

	return nil
}

func (r *RunSetRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64

	// Use SCAN to iterate over keys with the specified prefix
	for {
		keys, next, err := r.redisClient.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			r.logger.Error("Failed to scan run set keys", "pattern", pattern, "error", err)
			return fmt.Errorf("failed to scan run set keys: %w", err)
		}

		if len(keys) > 0 {
			if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
				r.logger.Error("Failed to delete run set keys", "pattern", pattern, "error", err)
				return fmt.Errorf("failed to delete run set keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}
