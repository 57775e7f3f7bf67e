package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SecretProvider resolves secret values from an external parameter store.
type SecretProvider interface {
	// GetParametersBatch fetches the given parameter paths and returns a map
	// of path -> decrypted value. Missing parameters are simply absent from
	// the returned map; the caller decides whether that is fatal.
	GetParametersBatch(ctx context.Context, paths []string) (map[string]string, error)
}

// ssmGetParametersBatchSize is the AWS API limit for GetParameters.
const ssmGetParametersBatchSize = 10

// SSMAPI defines the subset of the SSM client used by SSMProvider.
// Extracted for testability.
type SSMAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMProvider implements SecretProvider using AWS SSM Parameter Store with
// decryption enabled (SecureString parameters).
type SSMProvider struct {
	api SSMAPI
}

// NewSSMProvider creates an SSMProvider from an AWS config.
func NewSSMProvider(awsCfg aws.Config) *SSMProvider {
	return &SSMProvider{api: ssm.NewFromConfig(awsCfg)}
}

// NewSSMProviderWithAPI creates an SSMProvider with a pre-configured SSMAPI.
// Useful for testing with a mock SSM interface.
func NewSSMProviderWithAPI(api SSMAPI) *SSMProvider {
	return &SSMProvider{api: api}
}

// GetParametersBatch fetches parameters in chunks of at most 10 (the AWS API
// limit per GetParameters call).
func (p *SSMProvider) GetParametersBatch(ctx context.Context, paths []string) (map[string]string, error) {
	resolved := make(map[string]string, len(paths))

	for start := 0; start < len(paths); start += ssmGetParametersBatchSize {
		end := start + ssmGetParametersBatchSize
		if end > len(paths) {
			end = len(paths)
		}
		chunk := paths[start:end]

		out, err := p.api.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          chunk,
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("ssm GetParameters: %w", err)
		}

		for _, param := range out.Parameters {
			if param.Name == nil || param.Value == nil {
				continue
			}
			resolved[*param.Name] = *param.Value
		}
	}

	return resolved, nil
}

// Compile-time assertion that SSMProvider satisfies SecretProvider.
var _ SecretProvider = (*SSMProvider)(nil)
