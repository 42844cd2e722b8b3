// internal/workers/recommendation/recommend-movie/handler.go
package recommendmovie

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/metrics"
	"cinema-sage/internal/recommend"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-movie"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Recommender runs one request through the recommendation pipeline.
type Recommender interface {
	Run(ctx context.Context, text string) (*recommend.Result, error)
}

// JobErrorHandler fails or throws a job for a pipeline error.
type JobErrorHandler interface {
	HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error)
}

type Handler struct {
	config       *Config
	recommender  Recommender
	errorHandler JobErrorHandler
	logger       Logger
}

func NewHandler(config *Config, recommender Recommender, errorHandler JobErrorHandler, log Logger) *Handler {
	return &Handler{
		config:       config,
		recommender:  recommender,
		errorHandler: errorHandler,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// parseInput validates raw job variables and decodes them.
func parseInput(variables string) (*Input, error) {
	if err := inputSchema.ValidateJSON(variables); err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	request := strings.TrimSpace(input.Request)
	if request == "" {
		return nil, errors.NewInvalidRequestError("request is required")
	}

	result, err := h.recommender.Run(ctx, request)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Reply:     result.Reply,
		Title:     result.Title,
		Genre:     result.Params.Genre,
		Person:    result.Params.Person,
		Year:      result.Params.Year,
		GenreID:   result.Identifiers.GenreID,
		PersonID:  result.Identifiers.PersonID,
		Filter:    result.Filter,
		RequestID: result.RequestID,
	}

	h.logger.Info("recommendation produced", map[string]interface{}{
		"requestId": output.RequestID,
		"title":     output.Title,
		"filter":    output.Filter,
	})

	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
