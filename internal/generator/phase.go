package generator

// Phase is a step of the per-format generation state machine.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseAssembleDescriptors
	PhaseClassifyIndexes
	PhaseGenerateVariableIndexes
	PhaseGenerateFileIndexes
	PhaseGenerateDocumentFiles
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseAssembleDescriptors:
		return "assemble_descriptors"
	case PhaseClassifyIndexes:
		return "classify_indexes"
	case PhaseGenerateVariableIndexes:
		return "generate_variable_indexes"
	case PhaseGenerateFileIndexes:
		return "generate_file_indexes"
	case PhaseGenerateDocumentFiles:
		return "generate_document_files"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// phaseOrder is the only order phases run in. Variable indexes must be in
// the pool before file indexes and documents read it.
var phaseOrder = []Phase{
	PhaseInit,
	PhaseAssembleDescriptors,
	PhaseClassifyIndexes,
	PhaseGenerateVariableIndexes,
	PhaseGenerateFileIndexes,
	PhaseGenerateDocumentFiles,
}
