package artifact

// Source tells which root an expected artifact is resolved against
type Source string

const (
	SourceFeatureFolder Source = "feature-folder"
	SourceMemory        Source = "memory"
)

// Well-known artifact ids referenced by the workflow rules
const (
	IDConstitution          = "constitution"
	IDSpec                  = "spec"
	IDPlan                  = "plan"
	IDTasks                 = "tasks"
	IDResearch              = "research"
	IDDataModel             = "data-model"
	IDQuickstart            = "quickstart"
	IDContracts             = "contracts"
	IDChecklistRequirements = "checklist-requirements"
)

// Expectation is a static manifest entry describing an artifact the workflow expects
type Expectation struct {
	ID                    string `json:"id" yaml:"id"`
	Label                 string `json:"label" yaml:"label"`
	Kind                  Kind   `json:"kind" yaml:"kind"`
	StepID                string `json:"stepId" yaml:"stepId"`
	RelativePath          string `json:"relativePath" yaml:"relativePath"`
	Source                Source `json:"source" yaml:"source"`
	ChecklistRelativePath string `json:"checklistRelativePath,omitempty" yaml:"checklistRelativePath,omitempty"`
}

// Changing this table changes the contract seen by every consumer.
var manifest = []Expectation{
	{ID: IDConstitution, Label: "Constitution", Kind: KindFile, StepID: "constitution", RelativePath: "constitution.md", Source: SourceMemory},
	{ID: IDSpec, Label: "Spec", Kind: KindFile, StepID: "specify", RelativePath: "spec.md", Source: SourceFeatureFolder, ChecklistRelativePath: "checklists/requirements.md"},
	{ID: IDPlan, Label: "Plan", Kind: KindFile, StepID: "plan", RelativePath: "plan.md", Source: SourceFeatureFolder},
	{ID: IDTasks, Label: "Tasks", Kind: KindFile, StepID: "tasks", RelativePath: "tasks.md", Source: SourceFeatureFolder},
	{ID: IDResearch, Label: "Research", Kind: KindFile, StepID: "analyze", RelativePath: "research.md", Source: SourceFeatureFolder},
	{ID: IDDataModel, Label: "Data Model", Kind: KindFile, StepID: "analyze", RelativePath: "data-model.md", Source: SourceFeatureFolder},
	{ID: IDQuickstart, Label: "Quickstart", Kind: KindFile, StepID: "analyze", RelativePath: "quickstart.md", Source: SourceFeatureFolder},
	{ID: IDContracts, Label: "Contracts", Kind: KindFolder, StepID: "analyze", RelativePath: "contracts", Source: SourceFeatureFolder},
	{ID: IDChecklistRequirements, Label: "Checklist (Requirements)", Kind: KindFile, StepID: "checklist", RelativePath: "checklists/requirements.md", Source: SourceFeatureFolder},
}

// Manifest returns a copy of the expected artifact table in declaration order
func Manifest() []Expectation {
	out := make([]Expectation, len(manifest))
	copy(out, manifest)
	return out
}
