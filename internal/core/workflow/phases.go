package workflow

// PhaseDefinition describes one fixed stage of the pipeline
type PhaseDefinition struct {
	Number           int
	Name             string
	ResponsibleAgent string
	Description      string
}

// PhaseDefinitions is the ordered phase table. Treat as immutable.
type PhaseDefinitions []PhaseDefinition

// Phase numbers
const (
	PhaseExtract   = 1
	PhaseSummarize = 2
	PhaseRefine    = 3
)

// DefaultPhases returns the three-phase Extract, Summarize, Refine table
func DefaultPhases() PhaseDefinitions {
	return PhaseDefinitions{
		{
			Number:           PhaseExtract,
			Name:             "Extract",
			ResponsibleAgent: "Long-context model (large transcript input)",
			Description:      "Pull every location and plot thread out of the raw transcript.",
		},
		{
			Number:           PhaseSummarize,
			Name:             "Summarize",
			ResponsibleAgent: "Writing model (wiki page drafting)",
			Description:      "Turn the extraction into wiki pages for each location and plot thread.",
		},
		{
			Number:           PhaseRefine,
			Name:             "Refine",
			ResponsibleAgent: "Reasoning model (consistency review)",
			Description:      "Validate the pages, cross-check links, and emit the final content.",
		},
	}
}
