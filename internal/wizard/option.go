package wizard

// Option is one selectable choice. Two options are equal when their Value
// matches; Label is display text only.
type Option struct {
	Value string
	Label string
}

// Equal reports whether o and other select the same value.
func (o Option) Equal(other Option) bool { return o.Value == other.Value }

// NewOption returns an option whose label equals its value.
func NewOption(value string) Option { return Option{Value: value, Label: value} }

// OptionPage is one fetched batch of options. Cursor is the 1-based page
// number the batch was fetched with.
type OptionPage struct {
	Items     []Option
	Cursor    int
	Exhausted bool
}

// MetadataKind names a metadata listing served by the metadata service.
type MetadataKind string

// Metadata kinds understood by the metadata adapters.
const (
	MetaRegions            MetadataKind = "regions"
	MetaMachineTypes       MetadataKind = "machineTypes"
	MetaSSHKeys            MetadataKind = "sshKeys"
	MetaSupportedFlavors   MetadataKind = "supportedFlavors"
	MetaKubernetesVersions MetadataKind = "kubernetesVersions"
	MetaVCPUs              MetadataKind = "vcpus"
	MetaMemory             MetadataKind = "memory"
)

// QueryKey identifies one paginated listing. Two keys are the same query when
// they compare equal. Unresolved marks a dependent whose governing value is
// empty; such queries never reach the metadata source.
type QueryKey struct {
	Provider   string
	Kind       MetadataKind
	PageSize   int
	Context    string
	Unresolved bool
}

// Request builds the metadata request for page of q.
func (q QueryKey) Request(page int) MetadataRequest {
	return MetadataRequest{
		Provider: q.Provider,
		Kind:     q.Kind,
		PageSize: q.PageSize,
		Page:     page,
		Context:  q.Context,
	}
}
