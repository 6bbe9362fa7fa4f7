// Package ssm talks to AWS Systems Manager Parameter Store.
//
// Client pushes sync-ready entries to one region and KeyLoader fetches key
// material by parameter path. Both work against the narrow API interface so
// tests can substitute the SDK client.
package ssm

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/PolarWolf314/envseal/internal/logging"
	"github.com/PolarWolf314/envseal/internal/secrets"
	"github.com/PolarWolf314/envseal/internal/store"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// API is the subset of the SSM client envseal uses.
type API interface {
	PutParameter(ctx context.Context, params *awsssm.PutParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.PutParameterOutput, error)
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

// Options configures how AWS clients are built.
type Options struct {
	// Profile selects a shared config profile; empty uses the default chain.
	Profile string
	Log     logger.Logger
}

// LoadAPI builds an SSM client for region from the default AWS configuration chain.
func LoadAPI(ctx context.Context, opts Options, region string) (API, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration for %s: %w", region, err)
	}
	return awsssm.NewFromConfig(cfg), nil
}

// Client syncs entries to a single region.
type Client struct {
	api       API
	region    string
	variables []string
	log       logger.Logger
}

// New builds a Client for region using the default AWS configuration chain.
func New(ctx context.Context, opts Options, region string, variables []string) (*Client, error) {
	api, err := LoadAPI(ctx, opts, region)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api, region, variables, opts.Log), nil
}

// NewWithAPI builds a Client around an existing API implementation.
func NewWithAPI(api API, region string, variables []string, log logger.Logger) *Client {
	return &Client{api: api, region: region, variables: variables, log: log}
}

// ParameterName maps an entry name onto its parameter path. Names that are
// already absolute are kept; others are prefixed with the shared variables.
func (c *Client) ParameterName(name string) string {
	if strings.HasPrefix(name, "/") || len(c.variables) == 0 {
		return name
	}
	return "/" + strings.Join(c.variables, "/") + "/" + name
}

// Sync writes every entry as a parameter. It stops at the first failure.
func (c *Client) Sync(ctx context.Context, entries []store.Entry) error {
	for _, e := range entries {
		name := c.ParameterName(e.Name)

		if e.Type.Secure() && secrets.IsEncrypted(e.Value) {
			c.log.Warnf("%s: %s is still encrypted and is synced as ciphertext", c.region, name)
		}

		_, err := c.api.PutParameter(ctx, &awsssm.PutParameterInput{
			Name:      aws.String(name),
			Value:     aws.String(e.Value),
			Type:      types.ParameterType(e.Type),
			Overwrite: aws.Bool(e.Overwrite != nil && *e.Overwrite),
		})
		if err != nil {
			return fmt.Errorf("putting parameter %s: %w", name, err)
		}
		c.log.Debugf("%s: put %s", c.region, name)
	}
	return nil
}

// KeyLoader fetches key material stored as (secure) parameters.
type KeyLoader struct {
	api API
}

// NewKeyLoader wraps api.
func NewKeyLoader(api API) *KeyLoader {
	return &KeyLoader{api: api}
}

// LoadKey returns the decrypted value of the parameter at path.
func (l *KeyLoader) LoadKey(ctx context.Context, path string) (string, error) {
	out, err := l.api.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", path)
	}
	return *out.Parameter.Value, nil
}
