// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - SessionBuilder: Fluent builder for wizard sessions with fields pre-filled
//   - MetadataFixture: In-memory paginated metadata listings
//   - MockMetadataSource, MockCredentialSource, MockSubmitter: testify mocks
//     for the wizard's external collaborators
//
// Usage:
//
//	session := testing.NewSessionBuilder().
//	    WithCluster("demo", "default").
//	    WithProvider("aws").
//	    WithRegion("us-east-1").
//	    WithControlPlane("t3.medium", 3).
//	    Build(testing.NewMetadataFixture(), submitter, submitter)
package testing
