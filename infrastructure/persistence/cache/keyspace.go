package cache

import (
	"crypto/md5"
	"fmt"

	"profile-backend/domain/core/entities"
	pkgerrors "profile-backend/pkg/errors"
)

// UseCase is a logically distinct purpose for caching consumer data. Each use
// case owns its key namespace and TTL; invalidating one use case can never
// evict an entry written under another.
type UseCase string

const (
	// UseCaseIdentity caches the consumer record itself (the "read" use case)
	UseCaseIdentity UseCase = "identity"
	// UseCaseDelivery caches the next scheduled delivery time
	UseCaseDelivery UseCase = "delivery"
	// UseCaseTerms caches the terms-of-service status
	UseCaseTerms UseCase = "terms"
	// UseCaseAddress caches resolved address detail
	UseCaseAddress UseCase = "address"
)

// AllUseCases returns every known use case in deterministic order
func AllUseCases() []UseCase {
	return []UseCase{UseCaseIdentity, UseCaseDelivery, UseCaseTerms, UseCaseAddress}
}

// KeyType names the lookup dimension a physical key is derived from
type KeyType string

const (
	KeyByInternalID        KeyType = "cid"
	KeyByExternalUserID    KeyType = "uid"
	KeyByGeoAddressID      KeyType = "geo"
	KeyByImmutableIdentity KeyType = "imm"
)

// KeyDescriptor is a deterministic mapping from a record's identifying fields
// to one physical cache key within a (use case, key type) namespace
type KeyDescriptor struct {
	UseCase UseCase
	Type    KeyType
	Value   string
}

// keyBuilder derives a descriptor value from a snapshot. The second return is
// false when the snapshot lacks the inputs for this key type (e.g. an unlinked
// guest has no external user id).
type keyBuilder struct {
	keyType KeyType
	build   func(s entities.ConsumerSnapshot) (string, bool)
}

func byInternalID(s entities.ConsumerSnapshot) (string, bool) {
	if s.ID == "" {
		return "", false
	}
	return s.ID, true
}

func byExternalUserID(s entities.ConsumerSnapshot) (string, bool) {
	if s.UserID == "" || s.TenantID == "" || s.Experience == "" {
		return "", false
	}
	return fmt.Sprintf("%s:%s:%s", s.UserID, s.TenantID, s.Experience), true
}

func byGeoAddressID(s entities.ConsumerSnapshot) (string, bool) {
	if s.DefaultAddressID == "" {
		return "", false
	}
	return s.DefaultAddressID, true
}

// byImmutableIdentity hashes the attributes that can never change for a record.
// The hash keeps the key short and shape-stable across tenants.
func byImmutableIdentity(s entities.ConsumerSnapshot) (string, bool) {
	if s.ID == "" {
		return "", false
	}
	sum := md5.Sum([]byte(s.ID + "|" + s.TenantID + "|" + s.Experience))
	return fmt.Sprintf("%x", sum)[:16], true
}

// useCaseKeys is the static, exhaustively tested mapping from use case to its
// ordered key builders. Adding a use case here is the only way to introduce a
// new cache namespace.
var useCaseKeys = map[UseCase][]keyBuilder{
	UseCaseIdentity: {
		{KeyByInternalID, byInternalID},
		{KeyByExternalUserID, byExternalUserID},
		{KeyByImmutableIdentity, byImmutableIdentity},
	},
	UseCaseDelivery: {
		{KeyByInternalID, byInternalID},
	},
	UseCaseTerms: {
		{KeyByInternalID, byInternalID},
	},
	UseCaseAddress: {
		{KeyByGeoAddressID, byGeoAddressID},
	},
}

// KeySpace resolves logical lookups to physical cache keys. It is a pure
// mapping with no I/O and no mutable state, so concurrent callers always agree
// on what a record maps to.
type KeySpace struct {
	prefix string
}

// NewKeySpace creates a resolver with the given physical key prefix
func NewKeySpace(prefix string) *KeySpace {
	return &KeySpace{prefix: prefix}
}

// KeysFor enumerates every descriptor the record maps to for one use case.
// Unknown use cases fail loudly: silently skipping would turn a missed
// invalidation into a stale-read bug.
func (k *KeySpace) KeysFor(useCase UseCase, s entities.ConsumerSnapshot) ([]KeyDescriptor, error) {
	builders, ok := useCaseKeys[useCase]
	if !ok {
		return nil, pkgerrors.NewUnsupportedUseCaseError(string(useCase))
	}

	descriptors := make([]KeyDescriptor, 0, len(builders))
	for _, b := range builders {
		value, ok := b.build(s)
		if !ok {
			continue
		}
		descriptors = append(descriptors, KeyDescriptor{
			UseCase: useCase,
			Type:    b.keyType,
			Value:   value,
		})
	}
	return descriptors, nil
}

// AllKeysFor enumerates descriptors across every use case. Write paths use
// this so an invalidation can never miss a namespace.
func (k *KeySpace) AllKeysFor(s entities.ConsumerSnapshot) ([]KeyDescriptor, error) {
	var descriptors []KeyDescriptor
	for _, useCase := range AllUseCases() {
		ds, err := k.KeysFor(useCase, s)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, ds...)
	}
	return descriptors, nil
}

// PhysicalKey renders a descriptor as the cache key string
func (k *KeySpace) PhysicalKey(d KeyDescriptor) string {
	return fmt.Sprintf("%s%s:%s:%s", k.prefix, d.UseCase, d.Type, d.Value)
}

// PhysicalKeys renders a descriptor set, preserving order
func (k *KeySpace) PhysicalKeys(descriptors []KeyDescriptor) []string {
	keys := make([]string, len(descriptors))
	for i, d := range descriptors {
		keys[i] = k.PhysicalKey(d)
	}
	return keys
}
