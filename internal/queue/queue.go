package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// JobGenerateTwist regenerates the creative twist for a recipe.
const JobGenerateTwist = "generate_twist"

const jobsKey = "tastebook:jobs"

// Job is the descriptor pushed onto the queue. Delivery is at-least-once
// with no ordering guarantee between jobs for the same recipe.
type Job struct {
	Name     string `json:"job_name"`
	RecipeID uint   `json:"recipe_id"`
}

// Queue is a Redis-list backed task queue shared by the API and the
// worker process.
type Queue struct {
	redis *redis.Client
}

// New creates a new Queue instance
func New(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

// Enqueue pushes a job for eventual execution. There is no synchronous
// result; callers get their response before the job runs.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.redis.LPush(ctx, jobsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks until a job is available or the context is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	res, err := q.redis.BRPop(ctx, 0, jobsKey).Result()
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// RecipeChanged implements service.RecipeChangeNotifier by scheduling a
// twist regeneration for the recipe.
func (q *Queue) RecipeChanged(ctx context.Context, recipeID uint) error {
	return q.Enqueue(ctx, Job{Name: JobGenerateTwist, RecipeID: recipeID})
}
