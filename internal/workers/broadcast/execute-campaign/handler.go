// internal/workers/broadcast/execute-campaign/handler.go
package executecampaign

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/common/logger"
	"leadflow-workers/internal/common/metrics"
	"leadflow-workers/internal/common/validation"
	"leadflow-workers/internal/models"
)

const TaskType = "broadcast.execute-campaign"

var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["campaignId"],
  "properties": {
    "campaignId": {"type": "string", "minLength": 1}
  }
}`)

type CampaignExecutor interface {
	ExecuteByID(ctx context.Context, id string) (*models.BroadcastResult, error)
}

type Handler struct {
	config    *Config
	campaigns CampaignExecutor
	logger    logger.Logger
	errors    *errors.ErrorHandler
}

func NewHandler(config *Config, campaigns CampaignExecutor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		campaigns: campaigns,
		logger:    log,
		errors:    errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput(job.Variables)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.fail(ctx, client, job, errors.NewInputParsingError(err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":     job.Key,
		"campaignId": input.CampaignID,
		"sent":       output.Result.Sent,
		"failed":     output.Result.Failed,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func ParseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	if result := inputSchema.Validate(doc); !result.Valid {
		return nil, errors.NewValidationError(result.GetErrorMessages())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

// Execute runs a stored draft campaign. A campaign that found no audience
// completes the job with Success false in the result. Lookup failures and
// campaigns that are no longer drafts are errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.campaigns.ExecuteByID(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	return &Output{Result: result}, nil
}
