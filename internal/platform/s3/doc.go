// Package s3 provides a small S3 client used to publish the rendered cluster
// documents to a bucket. Any S3-compatible endpoint works.
package s3
