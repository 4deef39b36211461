package wizard_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/undistro/clusterwizard/api/v1alpha1"
	wtesting "github.com/undistro/clusterwizard/internal/testing"
	"github.com/undistro/clusterwizard/internal/wizard"
)

var _ = Describe("Creating a cluster through the wizard", func() {
	var (
		ctx       context.Context
		metadata  *wtesting.MetadataFixture
		submitter *wtesting.MockSubmitter
		session   *wizard.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		metadata = wtesting.NewMetadataFixture()
		submitter = &wtesting.MockSubmitter{}
		session = wtesting.NewSessionBuilder().
			WithCluster("demo", "default").
			WithProvider("aws").
			WithOptions(wizard.WithPageSize(2)).
			Build(metadata, submitter, submitter)
	})

	Context("on the cluster step", func() {
		It("pages through regions until exhausted", func() {
			Expect(session.OnStepEnter(ctx)).To(Succeed())

			pager, err := session.Pager(wizard.FieldRegion)
			Expect(err).NotTo(HaveOccurred())
			Expect(pager.Pages()).To(HaveLen(1))
			Expect(pager.HasMore()).To(BeTrue())

			for pager.HasMore() {
				_, err := session.LoadOptions(ctx, wizard.FieldRegion)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(pager.Pages()).To(HaveLen(3))
			Expect(pager.Options()).To(HaveLen(5))
			Expect(pager.Options()[0]).To(Equal(wizard.NewOption("us-east-1")))
		})

		It("refuses to advance without a region", func() {

			_, err := session.Next(ctx)
			Expect(err).To(MatchError(wizard.ErrStepIncomplete))

			var stepErr *wizard.StepIncompleteError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Missing).To(ConsistOf(wizard.FieldRegion))
		})

		It("keeps partial results when a listing fails", func() {
			metadata.Failing(wizard.MetaRegions, "", errors.New("503 service unavailable"))

			err := session.OnStepEnter(ctx)
			Expect(err).To(MatchError(wizard.ErrFetchFailed))

			metadata.Failing(wizard.MetaRegions, "", nil)
			page, err := session.LoadOptions(ctx, wizard.FieldRegion)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Cursor).To(Equal(1))
		})
	})

	Context("walking every step", func() {
		BeforeEach(func() {
			Expect(session.SetField(wizard.FieldRegion, wizard.OptionValue(wizard.NewOption("us-east-1")))).To(Succeed())
			_, err := session.Next(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(session.SetField(wizard.FieldFlavor, wizard.OptionValue(wizard.NewOption("ec2")))).To(Succeed())
			Expect(session.OnStepEnter(ctx)).To(Succeed())
			versions, err := session.Options(wizard.FieldKubernetesVersion)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).NotTo(BeEmpty())
			Expect(session.SetField(wizard.FieldKubernetesVersion, wizard.OptionValue(versions[0]))).To(Succeed())
			_, err = session.Next(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(session.OnStepEnter(ctx)).To(Succeed())
			machineTypes, err := session.Options(wizard.FieldMachineType)
			Expect(err).NotTo(HaveOccurred())
			Expect(machineTypes).To(HaveLen(2))
			Expect(session.SetField(wizard.FieldMachineType, wizard.OptionValue(machineTypes[0]))).To(Succeed())
			Expect(session.SetField(wizard.FieldReplicas, wizard.IntValue(3))).To(Succeed())
		})

		It("submits the cluster and its default policies", func() {
			first, err := session.AddWorkerPool(1)
			Expect(err).NotTo(HaveOccurred())
			second, err := session.AddWorkerPool(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.RemoveWorkerPool(first.ID)).To(Succeed())

			var submitted *v1alpha1.Cluster
			submitter.On("SubmitCluster", mock.Anything, mock.AnythingOfType("*v1alpha1.Cluster")).
				Run(func(args mock.Arguments) { submitted = args.Get(1).(*v1alpha1.Cluster) }).
				Return(nil).Once()
			submitter.On("SubmitPolicy", mock.Anything, mock.AnythingOfType("*v1alpha1.DefaultPolicies")).
				Return(nil).Once()

			result, err := session.Next(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).NotTo(BeNil())
			submitter.AssertExpectations(GinkgoT())

			Expect(submitted.Name).To(Equal("demo"))
			Expect(submitted.Spec.KubernetesVersion).To(Equal("v1.18.19"))
			Expect(submitted.Spec.InfrastructureProvider.Region).To(Equal("us-east-1"))
			Expect(submitted.Spec.Workers).To(HaveLen(1))
			Expect(*submitted.Spec.Workers[0].Replicas).To(Equal(int32(2)))
			Expect(result.Policy.Spec.ClusterName).To(Equal(submitted.Name))
			Expect(result.Policy.Namespace).To(Equal(submitted.Namespace))

			Expect(second.ID).NotTo(Equal(first.ID))
			Expect(session.State()).To(Equal(wizard.StateSubmitted))
		})

		It("reports which document the API rejected", func() {
			denied := errors.New("policy denied")
			submitter.On("SubmitCluster", mock.Anything, mock.Anything).Return(nil)
			submitter.On("SubmitPolicy", mock.Anything, mock.Anything).Return(denied)

			result, err := session.Commit(ctx)
			Expect(err).To(MatchError(wizard.ErrSubmissionFailed))
			Expect(result.ClusterErr).NotTo(HaveOccurred())
			Expect(result.PolicyErr).To(MatchError(denied))
			Expect(session.State()).To(Equal(wizard.StateInProgress))
			Expect(session.IsLastStep()).To(BeTrue())
		})

		It("forgets the machine type when the region changes", func() {
			Expect(session.Back()).To(Succeed())
			Expect(session.Back()).To(Succeed())
			Expect(session.SetField(wizard.FieldRegion, wizard.OptionValue(wizard.NewOption("eu-west-1")))).To(Succeed())

			_, ok := session.Field(wizard.FieldMachineType)
			Expect(ok).To(BeFalse())
			_, ok = session.Field(wizard.FieldReplicas)
			Expect(ok).To(BeTrue())
		})

		It("is discarded on close", func() {
			session.Close()
			Expect(session.State()).To(Equal(wizard.StateClosed))
			_, err := session.Commit(ctx)
			Expect(err).To(MatchError(wizard.ErrSessionTerminated))
		})
	})
})
