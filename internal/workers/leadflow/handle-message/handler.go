// internal/workers/leadflow/handle-message/handler.go
package handlemessage

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

const TaskType = "lead.handle-message"

// inputSchema leaves the industry value unchecked so unknown industries
// surface as UNSUPPORTED_INDUSTRY from the flow manager.
var inputSchema = validation.MustCompile(TaskType, `{
  "type": "object",
  "required": ["sessionId", "industry", "message"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1},
    "industry": {"type": "string", "minLength": 1},
    "message": {"type": "string"},
    "context": {"type": ["object", "null"]},
    "userInfo": {"type": ["object", "null"]},
    "behavior": {"type": ["object", "null"]},
    "preferences": {"type": ["object", "null"]}
  }
}`)

type SessionStore interface {
	Load(ctx context.Context, sessionID string) (models.FlowContext, bool, error)
	Save(ctx context.Context, fc models.FlowContext) error
}

type FlowManager interface {
	HandleMessage(ctx context.Context, fc models.FlowContext, message string) (*models.FlowResponse, error)
}

type Handler struct {
	config   *Config
	sessions SessionStore
	flows    FlowManager
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

func NewHandler(config *Config, sessions SessionStore, flows FlowManager, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		flows:    flows,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
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
		"jobKey":   job.Key,
		"nextStep": output.Response.NextStep,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

// ParseInput decodes and validates the raw job variables.
func ParseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	if result := inputSchema.Validate(doc); !result.Valid {
		return nil, errors.NewValidationError(result.GetErrorMessages())
	}
	if raw, ok := doc["context"]; ok && raw != nil {
		if result := validation.ValidateFlowContext(raw); !result.Valid {
			return nil, errors.NewValidationError(result.GetErrorMessages())
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

// Execute resolves the session context, runs one turn and persists the result.
// The turn has already fired its automation when Save runs, so a save failure
// is returned as final and the job is not retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	fc, err := h.resolveContext(ctx, input)
	if err != nil {
		return nil, err
	}

	resp, err := h.flows.HandleMessage(ctx, fc, input.Message)
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Save(ctx, resp.Context); err != nil {
		h.logger.Error("session save failed after turn", map[string]interface{}{
			"sessionId": input.SessionID,
			"error":     err.Error(),
		})
		return nil, errors.Final(err)
	}
	return &Output{Response: resp}, nil
}

func (h *Handler) resolveContext(ctx context.Context, input *Input) (models.FlowContext, error) {
	var fc models.FlowContext
	switch {
	case input.Context != nil:
		fc = input.Context.Clone()
	default:
		stored, found, err := h.sessions.Load(ctx, input.SessionID)
		if err != nil {
			return models.FlowContext{}, err
		}
		if found && stored.Industry == input.Industry {
			fc = stored
		} else {
			if found {
				h.logger.Warn("industry changed, restarting session", map[string]interface{}{
					"sessionId": input.SessionID,
					"stored":    stored.Industry,
					"requested": input.Industry,
				})
			}
			fc = models.NewFlowContext(input.SessionID, input.Industry)
		}
	}
	if fc.SessionID == "" {
		fc.SessionID = input.SessionID
	}
	if fc.Industry == "" {
		fc.Industry = input.Industry
	}
	if fc.Responses == nil {
		fc.Responses = map[string]string{}
	}

	if u := input.UserInfo; u != nil {
		if u.Name != "" {
			fc.UserInfo.Name = u.Name
		}
		if u.Email != "" {
			fc.UserInfo.Email = u.Email
		}
		if u.Phone != "" {
			fc.UserInfo.Phone = u.Phone
		}
	}
	if input.Behavior != nil {
		fc.Behavior = *input.Behavior
	}
	if input.Preferences != nil {
		fc.Preferences = *input.Preferences
	}
	return fc, nil
}
