package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	sim "github.com/metro-sim/metro-sim/sim"
)

// ScenarioConfig is the YAML experiment file: a shared parameter block plus
// named scenarios that override the arrival and policy flags.
type ScenarioConfig struct {
	Params    ParamsConfig        `yaml:"params"`
	Scenarios map[string]Scenario `yaml:"scenarios"`
}

// ParamsConfig mirrors sim.Params with YAML field names. Fields absent from
// the file keep their prefilled defaults, so a config only needs to state
// what it changes.
type ParamsConfig struct {
	EntryToSecurity float64 `yaml:"entry_to_security"`
	EntryToFastLane float64 `yaml:"entry_to_fast_lane"`
	FastLaneLength  float64 `yaml:"fast_lane_length"`
	ConveyorLength  float64 `yaml:"conveyor_length"`
	SecurityToGates float64 `yaml:"security_to_gates"`
	FastLaneToGates float64 `yaml:"fast_lane_to_gates"`
	FastLaneArea    float64 `yaml:"fast_lane_area"`
	PreGateArea     float64 `yaml:"pre_gate_area"`

	BodyWidth float64 `yaml:"body_width"`
	BagDepth  float64 `yaml:"bag_depth"`

	FreeFlowSpeed float64 `yaml:"free_flow_speed"`
	ConveyorSpeed float64 `yaml:"conveyor_speed"`

	FastLaneInitDensity float64 `yaml:"fast_lane_init_density"`
	FastLaneMaxDensity  float64 `yaml:"fast_lane_max_density"`
	PreGateInitDensity  float64 `yaml:"pre_gate_init_density"`
	PreGateMaxDensity   float64 `yaml:"pre_gate_max_density"`

	PlaceItemTime    float64 `yaml:"place_item_time"`
	RetrieveItemTime float64 `yaml:"retrieve_item_time"`
	GateServiceTime  float64 `yaml:"gate_service_time"`

	GateCount int `yaml:"gate_count"`

	TickSize float64 `yaml:"tick_size"`
}

// Scenario overrides the arrival and policy flags for one named experiment.
// Zero values mean "keep the CLI flag".
type Scenario struct {
	Pattern         string  `yaml:"pattern"`
	CheckedRate     float64 `yaml:"checked_rate"`
	UncheckedRate   float64 `yaml:"unchecked_rate"`
	ArrivalDuration float64 `yaml:"arrival_duration"`
	MaxTime         float64 `yaml:"max_time"`
	SecurityPolicy  string  `yaml:"security_policy"`
	GatePolicy      string  `yaml:"gate_policy"`
}

// LoadScenarioConfig reads and strictly parses the scenario YAML file.
// Unknown keys are an error: a typo in a parameter name silently running the
// defaults would invalidate an experiment.
func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &ScenarioConfig{Params: paramsConfigFrom(sim.DefaultParams())}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// BaseParams converts the (prefilled, decoded) parameter block back to
// sim.Params.
func (c *ScenarioConfig) BaseParams() sim.Params {
	pc := c.Params
	return sim.Params{
		EntryToSecurity: pc.EntryToSecurity,
		EntryToFastLane: pc.EntryToFastLane,
		FastLaneLength:  pc.FastLaneLength,
		ConveyorLength:  pc.ConveyorLength,
		SecurityToGates: pc.SecurityToGates,
		FastLaneToGates: pc.FastLaneToGates,
		FastLaneArea:    pc.FastLaneArea,
		PreGateArea:     pc.PreGateArea,

		BodyWidth: pc.BodyWidth,
		BagDepth:  pc.BagDepth,

		FreeFlowSpeed: pc.FreeFlowSpeed,
		ConveyorSpeed: pc.ConveyorSpeed,

		FastLaneInitDensity: pc.FastLaneInitDensity,
		FastLaneMaxDensity:  pc.FastLaneMaxDensity,
		PreGateInitDensity:  pc.PreGateInitDensity,
		PreGateMaxDensity:   pc.PreGateMaxDensity,

		PlaceItemTime:    pc.PlaceItemTime,
		RetrieveItemTime: pc.RetrieveItemTime,
		GateServiceTime:  pc.GateServiceTime,

		GateCount: pc.GateCount,

		TickSize: pc.TickSize,
	}
}

// ScenarioNames lists the config's scenario names, sorted for stable error
// messages.
func (c *ScenarioConfig) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for name := range c.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func paramsConfigFrom(p sim.Params) ParamsConfig {
	return ParamsConfig{
		EntryToSecurity: p.EntryToSecurity,
		EntryToFastLane: p.EntryToFastLane,
		FastLaneLength:  p.FastLaneLength,
		ConveyorLength:  p.ConveyorLength,
		SecurityToGates: p.SecurityToGates,
		FastLaneToGates: p.FastLaneToGates,
		FastLaneArea:    p.FastLaneArea,
		PreGateArea:     p.PreGateArea,

		BodyWidth: p.BodyWidth,
		BagDepth:  p.BagDepth,

		FreeFlowSpeed: p.FreeFlowSpeed,
		ConveyorSpeed: p.ConveyorSpeed,

		FastLaneInitDensity: p.FastLaneInitDensity,
		FastLaneMaxDensity:  p.FastLaneMaxDensity,
		PreGateInitDensity:  p.PreGateInitDensity,
		PreGateMaxDensity:   p.PreGateMaxDensity,

		PlaceItemTime:    p.PlaceItemTime,
		RetrieveItemTime: p.RetrieveItemTime,
		GateServiceTime:  p.GateServiceTime,

		GateCount: p.GateCount,

		TickSize: p.TickSize,
	}
}

// apply writes the scenario's non-zero overrides onto the CLI flag variables.
func (s Scenario) apply() {
	if s.Pattern != "" {
		pattern = s.Pattern
	}
	if s.CheckedRate > 0 {
		checkedRate = s.CheckedRate
	}
	if s.UncheckedRate > 0 {
		uncheckedRate = s.UncheckedRate
	}
	if s.ArrivalDuration > 0 {
		arrivalDuration = s.ArrivalDuration
	}
	if s.MaxTime > 0 {
		maxTime = s.MaxTime
	}
	if s.SecurityPolicy != "" {
		securityPolicy = s.SecurityPolicy
	}
	if s.GatePolicy != "" {
		gatePolicy = s.GatePolicy
	}
}
