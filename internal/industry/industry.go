// Package industry defines the per-industry question flows and the registry
// the flow manager routes sessions through.
package industry

import (
	"fmt"
	"strconv"
	"strings"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/models"
)

// Flow advances one industry's step machine by one user reply.
type Flow interface {
	Industry() models.Industry
	HandleStep(fc models.FlowContext, reply string) (*models.IndustryResponse, error)
}

// StepHandler receives a private copy of the context and may modify it freely.
type StepHandler func(fc models.FlowContext, reply string) *models.IndustryResponse

// Machine dispatches on FlowContext.CurrentStep.
type Machine struct {
	industry models.Industry
	steps    map[string]StepHandler
}

func NewMachine(industry models.Industry, steps map[string]StepHandler) *Machine {
	return &Machine{industry: industry, steps: steps}
}

func (m *Machine) Industry() models.Industry { return m.industry }

// HandleStep never mutates fc; the returned response carries the new context.
func (m *Machine) HandleStep(fc models.FlowContext, reply string) (*models.IndustryResponse, error) {
	step := fc.Step()
	handler, ok := m.steps[step]
	if !ok {
		return nil, errors.NewUnknownStepError(string(m.industry), step)
	}
	return handler(fc.Clone(), reply), nil
}

// Respond positions fc at next and builds the response around it.
func Respond(fc models.FlowContext, message, next string, options ...string) *models.IndustryResponse {
	fc.CurrentStep = next
	return &models.IndustryResponse{
		Message:  message,
		NextStep: next,
		Options:  options,
		Segment:  fc.Segment,
		Context:  fc,
	}
}

// Registry maps each industry to its flow.
type Registry struct {
	flows map[models.Industry]Flow
}

func NewRegistry(flows ...Flow) *Registry {
	r := &Registry{flows: make(map[models.Industry]Flow, len(flows))}
	for _, f := range flows {
		r.flows[f.Industry()] = f
	}
	return r
}

// Lookup returns an UNSUPPORTED_INDUSTRY error for unregistered industries.
func (r *Registry) Lookup(ind models.Industry) (Flow, error) {
	f, ok := r.flows[ind]
	if !ok {
		return nil, errors.NewUnsupportedIndustryError(string(ind))
	}
	return f, nil
}

// ParseSelection reads a 1-based menu choice. ok is false when out of range.
func ParseSelection(reply string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// NumberedOptions renders "1", "2", ... for a menu of n entries.
func NumberedOptions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

// NumberedList renders lines as "1. line".
func NumberedList(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, l)
	}
	return b.String()
}
