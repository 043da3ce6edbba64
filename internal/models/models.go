package models

// PhysicalState is the state of matter a chemical is stored in.
type PhysicalState string

const (
	Solid  PhysicalState = "solid"
	Liquid PhysicalState = "liquid"
	Gas    PhysicalState = "gas"
)

// HazardIndicator marks chemicals that are dispensed drop by drop.
const HazardIndicator = "indicator"

// LitmusID is the chemical id handled as a dipping strip instead of a liquid.
const LitmusID = "Litmus"

// ContainerKind is the kind of apparatus a chemical is placed in.
type ContainerKind int

const (
	Flask ContainerKind = iota
	Dropper
	LitmusStrip
)

func (k ContainerKind) String() string {
	switch k {
	case Dropper:
		return "dropper"
	case LitmusStrip:
		return "litmus strip"
	default:
		return "flask"
	}
}

// Chemical represents one entry of the chemical registry.
type Chemical struct {
	ID     string        `yaml:"-" json:"-" toml:"-"`
	Name   string        `yaml:"name" json:"name" toml:"name"`
	Color  string        `yaml:"color" json:"color" toml:"color"` // e.g., "#ff4444"
	State  PhysicalState `yaml:"state" json:"state" toml:"state"`
	Hazard string        `yaml:"hazard" json:"hazard" toml:"hazard"` // e.g., "corrosive", "indicator"
}

// Kind derives the container used for the chemical. It is never stored.
func (c Chemical) Kind() ContainerKind {
	if c.ID == LitmusID {
		return LitmusStrip
	}
	if c.Hazard == HazardIndicator && c.State == Liquid {
		return Dropper
	}
	return Flask
}

// ReactionResult is what the student observes when a rule fires.
type ReactionResult struct {
	ColorChange       string `yaml:"colorChange" json:"colorChange" toml:"colorChange"`
	Effervescence     bool   `yaml:"effervescence" json:"effervescence" toml:"effervescence"`
	Precipitate       bool   `yaml:"precipitate" json:"precipitate" toml:"precipitate"`
	TemperatureChange string `yaml:"temperatureChange" json:"temperatureChange" toml:"temperatureChange"` // "exothermic", "endothermic", "none"
	Observation       string `yaml:"observation" json:"observation" toml:"observation"`
	Description       string `yaml:"description" json:"description" toml:"description"`
	Equation          string `yaml:"equation,omitempty" json:"equation,omitempty" toml:"equation,omitempty"`
}

// ReactionRule maps an exact set of chemicals to a result.
type ReactionRule struct {
	Chemicals []string       `yaml:"chemicals" json:"chemicals" toml:"chemicals"`
	Results   ReactionResult `yaml:"results" json:"results" toml:"results"`
}

// LabData is the static configuration the lab reads at startup.
type LabData struct {
	Chemicals map[string]Chemical `yaml:"chemicals" json:"chemicals" toml:"chemicals"` // Keyed by chemical id
	Mixtures  []ReactionRule      `yaml:"mixtures" json:"mixtures" toml:"mixtures"`
}
