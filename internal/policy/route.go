package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var ErrInvalidRouteTable = errors.New("invalid approval route table")

type Stage struct {
	Threshold float64
	Name      string
}

// RouteTable maps amount thresholds to approval stages. Stages are kept in
// strictly ascending threshold order; Base is always the first approver.
type RouteTable struct {
	Base   string
	Stages []Stage
}

func DefaultRouteTable() RouteTable {
	return RouteTable{
		Base: "Dept Head",
		Stages: []Stage{
			{Threshold: 100000, Name: "Procurement"},
			{Threshold: 500000, Name: "Finance"},
			{Threshold: 1000000, Name: "C-Level"},
		},
	}
}

func NewRouteTable(base string, stages []Stage) (RouteTable, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return RouteTable{}, fmt.Errorf("%w: base stage is required", ErrInvalidRouteTable)
	}
	for i, stage := range stages {
		if strings.TrimSpace(stage.Name) == "" {
			return RouteTable{}, fmt.Errorf("%w: stage %d has no name", ErrInvalidRouteTable, i+1)
		}
		if i > 0 && stage.Threshold <= stages[i-1].Threshold {
			return RouteTable{}, fmt.Errorf("%w: thresholds must be strictly ascending", ErrInvalidRouteTable)
		}
	}
	return RouteTable{Base: base, Stages: append([]Stage(nil), stages...)}, nil
}

// ParseStages reads "100000:Procurement,500000:Finance".
func ParseStages(raw string) ([]Stage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var stages []Stage
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		threshold, name, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not threshold:name", ErrInvalidRouteTable, item)
		}
		value, err := cast.ToFloat64E(strings.TrimSpace(threshold))
		if err != nil {
			return nil, fmt.Errorf("%w: threshold %q: %v", ErrInvalidRouteTable, threshold, err)
		}
		stages = append(stages, Stage{Threshold: value, Name: strings.TrimSpace(name)})
	}
	return stages, nil
}

// Route lists the approval stages for amount. Every stage whose threshold the
// amount reaches is included, so one document can trigger several stages.
func (t RouteTable) Route(amount float64) []string {
	route := []string{t.Base}
	for _, stage := range t.Stages {
		if amount >= stage.Threshold {
			route = append(route, stage.Name)
		}
	}
	return route
}
