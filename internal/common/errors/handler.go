// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobErrorHandler fails or throws workflow jobs from a StandardError.
type JobErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewJobErrorHandler(logger Logger) *JobErrorHandler {
	return &JobErrorHandler{logger: logger}
}

// HandleJobError retries technical failures while the job still has retries
// left and throws a BPMN error for everything else.
func (h *JobErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := As(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	if bpmnErr.Retries > 0 && job.Retries > 0 {
		h.failJob(ctx, client, job, bpmnErr)
		return
	}
	h.throwError(ctx, client, job, bpmnErr)
}

func (h *JobErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	retries := bpmnErr.Retries
	if int(job.Retries) < retries {
		retries = int(job.Retries)
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries - 1)).
		ErrorMessage(bpmnErr.Message)

	if vars, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, err = withVars.Send(ctx)
			h.logSendFailure(job, err)
			return
		}
	}
	_, err := cmd.Send(ctx)
	h.logSendFailure(job, err)
}

func (h *JobErrorHandler) throwError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, err = withVars.Send(ctx)
			h.logSendFailure(job, err)
			return
		}
	}
	_, err := cmd.Send(ctx)
	h.logSendFailure(job, err)
}

func (h *JobErrorHandler) logSendFailure(job entities.Job, err error) {
	if err != nil {
		h.logger.Error("failed to report job error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
