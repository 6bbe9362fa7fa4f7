package store

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/envseal/internal/errors"
)

// Provider names a remote parameter store. The set is closed.
type Provider string

const (
	// ProviderAWS is AWS Systems Manager Parameter Store.
	ProviderAWS Provider = "aws"
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{ProviderAWS}
}

// ParseProvider maps a user supplied name onto a Provider.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case ProviderAWS:
		return ProviderAWS, nil
	default:
		return "", fmt.Errorf("%w: %q is not a supported provider", kerrors.ErrUnknownProvider, name)
	}
}
