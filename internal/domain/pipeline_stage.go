package domain

// PipelineStage is a user-configured pipeline status.
type PipelineStage struct {
	Name  string `json:"name" yaml:"name" validate:"required,max=64"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,max=32"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" validate:"omitempty,max=64"`
}

// DefaultPipelineStages is used when no valid stage configuration is stored.
func DefaultPipelineStages() []PipelineStage {
	return []PipelineStage{
		{Name: string(LeadStatusNew)},
		{Name: string(LeadStatusQualified)},
		{Name: string(LeadStatusInProgress)},
		{Name: string(LeadStatusConverted)},
		{Name: string(LeadStatusLost)},
	}
}

// StageNames extracts the names of the given stages in order.
func StageNames(stages []PipelineStage) []string {
	names := make([]string, 0, len(stages))
	for _, stage := range stages {
		names = append(names, stage.Name)
	}
	return names
}
