package wizard

// Step is one screen of the wizard. Required fields gate forward navigation;
// Loads lists the option fields whose first page is fetched on entering it.
type Step struct {
	Name     string
	Label    string
	Required []FieldKey
	Loads    []FieldKey
}

// Default step names.
const (
	StepCluster        = "cluster"
	StepInfrastructure = "infrastructure"
	StepControlPlane   = "controlPlane"
)

// DefaultSteps returns the three wizard steps of the cluster creation flow.
func DefaultSteps() []Step {
	return []Step{
		{
			Name:     StepCluster,
			Label:    "Cluster",
			Required: []FieldKey{FieldClusterName, FieldNamespace, FieldProvider, FieldRegion},
			Loads:    []FieldKey{FieldRegion},
		},
		{
			Name:     StepInfrastructure,
			Label:    "Infrastructure provider",
			Required: []FieldKey{FieldFlavor, FieldKubernetesVersion},
			Loads:    []FieldKey{FieldFlavor, FieldKubernetesVersion, FieldSSHKey},
		},
		{
			Name:     StepControlPlane,
			Label:    "Control plane & workers",
			Required: []FieldKey{FieldReplicas, FieldMachineType},
			Loads:    []FieldKey{FieldMachineType, FieldVCPU, FieldMemory},
		},
	}
}

// missing returns the required fields of step not present in fields.
func (s Step) missing(fields map[FieldKey]Value) []FieldKey {
	var out []FieldKey
	for _, key := range s.Required {
		if !fields[key].Present() {
			out = append(out, key)
		}
	}
	return out
}
