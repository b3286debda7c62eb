package normalizer

import (
	"fmt"

	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// Names accepted by ByName, used by the config file and the CLI flags.
const (
	NameIdentity = "identity"
	NameNFC      = "nfc"
	NameCaseFold = "casefold"
)

// ByName resolves a normalizer from its configuration name.
func ByName(name string) (ports.Normalizer, error) {
	switch name {
	case NameIdentity, "":
		return NewIdentityNormalizer(), nil
	case NameNFC:
		return NewNFCNormalizer(), nil
	case NameCaseFold:
		return NewCaseFoldNormalizer(), nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q", name)
	}
}
