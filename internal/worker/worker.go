package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/queue"
	"github.com/tastebook/backend/internal/service"
)

// Worker consumes twist-generation jobs. Each job reads the recipe's
// current state, calls the generator once, and always leaves the recipe in
// a terminal status; generator failures become data, never panics.
type Worker struct {
	recipes *service.RecipeService
	twists  service.TwistGenerator
	queue   *queue.Queue
}

// New creates a new Worker instance
func New(recipes *service.RecipeService, twists service.TwistGenerator, q *queue.Queue) *Worker {
	return &Worker{
		recipes: recipes,
		twists:  twists,
		queue:   q,
	}
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Println("worker: waiting for jobs")
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("worker: dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		w.Handle(ctx, job)
	}
}

// Handle dispatches one job by name. Unknown jobs are dropped with a log
// line so a newer producer cannot wedge an older worker.
func (w *Worker) Handle(ctx context.Context, job *queue.Job) {
	switch job.Name {
	case queue.JobGenerateTwist:
		w.GenerateTwist(ctx, job.RecipeID)
	default:
		log.Printf("worker: unknown job %q, dropping", job.Name)
	}
}

// GenerateTwist runs one generation attempt for the recipe. Reads the
// current name and ingredient list, not a snapshot from enqueue time, so
// the last job to finish wins when mutations race.
func (w *Worker) GenerateTwist(ctx context.Context, recipeID uint) {
	if err := w.recipes.UpdateGenerationStatus(ctx, recipeID, model.StatusGenerating); err != nil {
		log.Printf("worker: recipe %d: failed to mark generating: %v", recipeID, err)
		return
	}

	src, err := w.recipes.TwistSource(ctx, recipeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Deleted between enqueue and execution; nothing left to update.
		log.Printf("worker: recipe %d no longer exists, dropping twist job", recipeID)
		return
	}
	if err != nil {
		w.fail(ctx, recipeID, err)
		return
	}

	twist, err := w.twists.GenerateTwist(ctx, src.Name, src.IngredientNames)
	if err != nil {
		w.fail(ctx, recipeID, err)
		return
	}

	result := model.TwistResult{Twist: twist}
	if err := w.recipes.UpdateTwistResult(ctx, recipeID, result, model.StatusCompleted); err != nil {
		log.Printf("worker: recipe %d: failed to store twist: %v", recipeID, err)
	}
}

func (w *Worker) fail(ctx context.Context, recipeID uint, cause error) {
	result := model.TwistResult{Err: fmt.Sprintf("Generation error: %v", cause)}
	if err := w.recipes.UpdateTwistResult(ctx, recipeID, result, model.StatusFailed); err != nil {
		log.Printf("worker: recipe %d: failed to store generation error: %v", recipeID, err)
	}
}
