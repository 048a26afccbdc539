// internal/workers/motors/find-suitable-motors/handler.go
package findsuitablemotors

import (
	"context"
	"time"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/metrics"
	"motor-picker/internal/common/validation"
	"motor-picker/internal/matcher"
	"motor-picker/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "find-suitable-motors"
)

type Handler struct {
	config    *Config
	matcher   *matcher.Matcher
	validator *validation.Validator
	errors    *apperrors.JobErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, m *matcher.Matcher, validator *validation.Validator, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		matcher:   m,
		validator: validator,
		errors:    apperrors.NewJobErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if h.validator != nil {
		if err := h.validator.ValidateInput(registry.OpFindSuitableMotors, vars); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	matches, err := h.matcher.Find(ctx, input.requirement())
	if err != nil {
		return nil, err
	}

	h.logger.Info("motors ranked", map[string]interface{}{
		"requiredRpm":      input.RequiredRPM,
		"requiredTorqueNm": input.RequiredTorqueNm,
		"matchCount":       len(matches),
	})

	return &Output{
		Matches:        matches,
		MatchCount:     len(matches),
		CatalogVersion: h.matcher.Catalog().Version(),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.As(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
