package locator

import (
	"context"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// NewGroupIdentity generates a fresh secp256k1 identity recoverable from a
// BIP-39 mnemonic, grounded on the same entropy-then-derive flow the
// teacher's seed manager uses for its ed25519 identities, adapted here to
// secp256k1. The mnemonic is the only backup a caller needs to keep.
func NewGroupIdentity() (*LocalSigner, string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", err
	}
	signer, err := groupSignerFromMnemonic(mnemonic)
	if err != nil {
		return nil, "", err
	}
	return signer, mnemonic, nil
}

// RestoreGroupIdentity recovers the signer a prior NewGroupIdentity call
// produced, from its mnemonic.
func RestoreGroupIdentity(mnemonic string) (*LocalSigner, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, &ArgumentError{Field: "mnemonic", Err: errMissingField}
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, &ArgumentError{Field: "mnemonic", Err: errInvalidMnemonic}
	}
	return groupSignerFromMnemonic(mnemonic)
}

func groupSignerFromMnemonic(mnemonic string) (*LocalSigner, error) {
	seed := bip39.NewSeed(mnemonic, "")
	return NewLocalSigner(seed[:32], nil)
}

// GroupResolver is a thin façade over Resolver with the group's public
// key fixed as the resolve target and the group's own signer supplied as
// the decryption key for every call, so member code never has to repeat
// either.
type GroupResolver struct {
	resolver *Resolver
	signer   *LocalSigner
}

// NewGroupResolver wraps resolver for group, which must be the identity
// whose records the group publishes under.
func NewGroupResolver(resolver *Resolver, group *LocalSigner) *GroupResolver {
	return &GroupResolver{resolver: resolver, signer: group}
}

// Resolve resolves identifier under the group's own public key.
func (g *GroupResolver) Resolve(ctx context.Context, identifier string) (*Payload, error) {
	return g.resolver.Resolve(ctx, g.signer.PublicKey(), identifier, g.signer)
}

// ResolveLatest resolves the group's most recently updated record under
// any identifier.
func (g *GroupResolver) ResolveLatest(ctx context.Context) (*Payload, error) {
	return g.resolver.ResolveLatest(ctx, g.signer.PublicKey(), g.signer)
}
