// Package async provides utilities for parallel task execution with
// per-task error collection.
//
// [RunAll] executes independent operations concurrently and reports each
// outcome by task name. The wizard uses it to submit the cluster and policy
// documents independently of each other.
package async
