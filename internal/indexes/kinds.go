// Package indexes renders taxonomy aggregates: value indexes list the
// documents sharing one value and value lists enumerate every value of a
// taxonomy.
package indexes

import (
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
)

// Job is one index definition bound to its taxonomy. The set of
// implementations is closed: one per definition kind and output kind.
type Job interface {
	Taxonomy() runtimeconfig.Taxonomy
	ID() string
	Kind() string
	Output() runtimeconfig.OutputType
	isJob()
}

const (
	KindValueIndex = "value_index"
	KindValueList  = "value_list"
)

type valueIndexJob struct {
	Tax runtimeconfig.Taxonomy
	Def runtimeconfig.IndexDefinition
}

func (j valueIndexJob) Taxonomy() runtimeconfig.Taxonomy { return j.Tax }
func (j valueIndexJob) ID() string                       { return j.Def.ID }
func (j valueIndexJob) Kind() string                     { return KindValueIndex }

type valueListJob struct {
	Tax runtimeconfig.Taxonomy
	Def runtimeconfig.ValueListDefinition
}

func (j valueListJob) Taxonomy() runtimeconfig.Taxonomy { return j.Tax }
func (j valueListJob) ID() string                       { return j.Def.ID }
func (j valueListJob) Kind() string                     { return KindValueList }

// VariableValueIndex renders one pool entry per taxonomy value.
type VariableValueIndex struct{ valueIndexJob }

// FileValueIndex writes one file per taxonomy value.
type FileValueIndex struct{ valueIndexJob }

// VariableValueList renders one pool entry for the whole taxonomy.
type VariableValueList struct{ valueListJob }

// FileValueList writes one file for the whole taxonomy.
type FileValueList struct{ valueListJob }

func (VariableValueIndex) Output() runtimeconfig.OutputType { return runtimeconfig.OutputVariable }
func (FileValueIndex) Output() runtimeconfig.OutputType     { return runtimeconfig.OutputFile }
func (VariableValueList) Output() runtimeconfig.OutputType  { return runtimeconfig.OutputVariable }
func (FileValueList) Output() runtimeconfig.OutputType      { return runtimeconfig.OutputFile }

func (VariableValueIndex) isJob() {}
func (FileValueIndex) isJob()     {}
func (VariableValueList) isJob()  {}
func (FileValueList) isJob()      {}

// Plan buckets every declared definition by kind and output.
type Plan struct {
	VariableIndexes []VariableValueIndex
	VariableLists   []VariableValueList
	FileIndexes     []FileValueIndex
	FileLists       []FileValueList
}

// Classify builds the plan for taxonomies, keeping declaration order
// within each bucket.
func Classify(taxonomies []runtimeconfig.Taxonomy) Plan {
	var plan Plan
	for _, tax := range taxonomies {
		for _, def := range tax.Indexes {
			job := valueIndexJob{Tax: tax, Def: def}
			switch def.OutputType {
			case runtimeconfig.OutputVariable:
				plan.VariableIndexes = append(plan.VariableIndexes, VariableValueIndex{job})
			case runtimeconfig.OutputFile:
				plan.FileIndexes = append(plan.FileIndexes, FileValueIndex{job})
			}
		}
		for _, def := range tax.ValueLists {
			job := valueListJob{Tax: tax, Def: def}
			switch def.OutputType {
			case runtimeconfig.OutputVariable:
				plan.VariableLists = append(plan.VariableLists, VariableValueList{job})
			case runtimeconfig.OutputFile:
				plan.FileLists = append(plan.FileLists, FileValueList{job})
			}
		}
	}
	return plan
}

// VariablePhase returns the jobs that fill the output pool, value indexes
// first.
func (p Plan) VariablePhase() []Job {
	jobs := make([]Job, 0, len(p.VariableIndexes)+len(p.VariableLists))
	for _, job := range p.VariableIndexes {
		jobs = append(jobs, job)
	}
	for _, job := range p.VariableLists {
		jobs = append(jobs, job)
	}
	return jobs
}

// FilePhase returns the jobs that write files, value indexes first.
func (p Plan) FilePhase() []Job {
	jobs := make([]Job, 0, len(p.FileIndexes)+len(p.FileLists))
	for _, job := range p.FileIndexes {
		jobs = append(jobs, job)
	}
	for _, job := range p.FileLists {
		jobs = append(jobs, job)
	}
	return jobs
}

// Len reports the number of jobs in the plan.
func (p Plan) Len() int {
	return len(p.VariableIndexes) + len(p.VariableLists) + len(p.FileIndexes) + len(p.FileLists)
}
