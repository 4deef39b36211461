package metadata

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"
)

// ErrKeyPairsDenied is returned when EC2 rejects the key pair listing.
var ErrKeyPairsDenied = errors.New("listing EC2 key pairs was denied")

// KeyPairLister lists the names of the SSH key pairs registered in a region.
type KeyPairLister interface {
	KeyPairs(ctx context.Context, region string) ([]string, error)
}

// EC2KeyPairs lists key pairs with the EC2 DescribeKeyPairs API. The SDK
// config is resolved on every call so credentials entered after start-up
// are picked up.
type EC2KeyPairs struct {
	loadConfig func(ctx context.Context) (aws.Config, error)
	optFns     []func(*ec2.Options)
}

// NewEC2KeyPairs creates a lister. optFns adjust every EC2 client, e.g. to
// point it at another endpoint.
func NewEC2KeyPairs(loadConfig func(ctx context.Context) (aws.Config, error), optFns ...func(*ec2.Options)) *EC2KeyPairs {
	return &EC2KeyPairs{loadConfig: loadConfig, optFns: optFns}
}

// KeyPairs implements KeyPairLister. Names are sorted.
func (k *EC2KeyPairs) KeyPairs(ctx context.Context, region string) ([]string, error) {
	cfg, err := k.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	optFns := append([]func(*ec2.Options){func(o *ec2.Options) { o.Region = region }}, k.optFns...)
	client := ec2.NewFromConfig(cfg, optFns...)

	out, err := client.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "UnauthorizedOperation" || apiErr.ErrorCode() == "AuthFailure") {
			return nil, fmt.Errorf("%w in %s: %w", ErrKeyPairsDenied, region, err)
		}
		return nil, fmt.Errorf("describe key pairs in %s: %w", region, err)
	}

	names := make([]string, 0, len(out.KeyPairs))
	for _, kp := range out.KeyPairs {
		if name := aws.ToString(kp.KeyName); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
