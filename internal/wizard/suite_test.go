package wizard_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// TestWizardScenarios is the entry point for the Ginkgo session scenarios.
func TestWizardScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wizard Scenario Suite")
}
