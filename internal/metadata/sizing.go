package metadata

import (
	"fmt"
	"strconv"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// sizing is the vCPU and memory footprint of a machine type.
type sizing struct {
	VCPUs  int
	Memory float64
}

func (s sizing) vcpuOption() wizard.Option {
	v := strconv.Itoa(s.VCPUs)
	return wizard.Option{Value: v, Label: v + " vCPU"}
}

func (s sizing) memoryOption() wizard.Option {
	v := strconv.FormatFloat(s.Memory, 'f', -1, 64)
	return wizard.Option{Value: v, Label: v + " GiB"}
}

func machineTypeOption(name string, s sizing) wizard.Option {
	return wizard.Option{
		Value: name,
		Label: fmt.Sprintf("%s (%d vCPU, %s GiB)", name, s.VCPUs, strconv.FormatFloat(s.Memory, 'f', -1, 64)),
	}
}

// sizingOptions answers the vcpus and memory kinds for one machine type.
// An unknown machine type lists nothing.
func sizingOptions(kind wizard.MetadataKind, s *sizing) []wizard.Option {
	if s == nil {
		return nil
	}
	if kind == wizard.MetaVCPUs {
		return []wizard.Option{s.vcpuOption()}
	}
	return []wizard.Option{s.memoryOption()}
}
