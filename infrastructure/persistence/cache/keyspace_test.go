package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-backend/domain/core/entities"
	pkgerrors "profile-backend/pkg/errors"
)

func fullSnapshot() entities.ConsumerSnapshot {
	return entities.ConsumerSnapshot{
		ID:               "5fc03087-d265-4e24-9bb2-bd2e3bb276da",
		UserID:           "user-42",
		TenantID:         "tenant-1",
		Experience:       "primary-brand",
		DefaultAddressID: "addr-9",
	}
}

func TestKeySpace_KeysFor_Identity(t *testing.T) {
	ks := NewKeySpace("profile:")

	descriptors, err := ks.KeysFor(UseCaseIdentity, fullSnapshot())

	require.NoError(t, err)
	require.Len(t, descriptors, 3)
	assert.Equal(t, KeyByInternalID, descriptors[0].Type)
	assert.Equal(t, "5fc03087-d265-4e24-9bb2-bd2e3bb276da", descriptors[0].Value)
	assert.Equal(t, KeyByExternalUserID, descriptors[1].Type)
	assert.Equal(t, "user-42:tenant-1:primary-brand", descriptors[1].Value)
	assert.Equal(t, KeyByImmutableIdentity, descriptors[2].Type)
	assert.Len(t, descriptors[2].Value, 16)
}

func TestKeySpace_KeysFor_SkipsKeysWithMissingInputs(t *testing.T) {
	ks := NewKeySpace("profile:")

	snap := fullSnapshot()
	snap.UserID = "" // unlinked guest
	snap.DefaultAddressID = ""

	identity, err := ks.KeysFor(UseCaseIdentity, snap)
	require.NoError(t, err)
	require.Len(t, identity, 2)
	for _, d := range identity {
		assert.NotEqual(t, KeyByExternalUserID, d.Type)
	}

	address, err := ks.KeysFor(UseCaseAddress, snap)
	require.NoError(t, err)
	assert.Empty(t, address)
}

func TestKeySpace_KeysFor_UnknownUseCase(t *testing.T) {
	ks := NewKeySpace("profile:")

	_, err := ks.KeysFor(UseCase("payments"), fullSnapshot())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnsupportedUseCase(err))
}

func TestKeySpace_KeysFor_Deterministic(t *testing.T) {
	ks := NewKeySpace("profile:")
	snap := fullSnapshot()

	first, err := ks.AllKeysFor(snap)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ks.AllKeysFor(snap)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestKeySpace_AllKeysFor_CoversEveryUseCase(t *testing.T) {
	ks := NewKeySpace("profile:")

	descriptors, err := ks.AllKeysFor(fullSnapshot())
	require.NoError(t, err)

	seen := make(map[UseCase]bool)
	for _, d := range descriptors {
		seen[d.UseCase] = true
	}
	for _, useCase := range AllUseCases() {
		assert.True(t, seen[useCase], "use case %s has no descriptors", useCase)
	}
}

func TestKeySpace_PhysicalKey_NamespaceIsolation(t *testing.T) {
	ks := NewKeySpace("profile:")
	snap := fullSnapshot()

	// The same internal id appears under identity, delivery and terms; the
	// physical keys must never collide across use cases.
	keys := make(map[string]UseCase)
	for _, useCase := range []UseCase{UseCaseIdentity, UseCaseDelivery, UseCaseTerms} {
		descriptors, err := ks.KeysFor(useCase, snap)
		require.NoError(t, err)
		for _, d := range descriptors {
			key := ks.PhysicalKey(d)
			if owner, exists := keys[key]; exists {
				t.Fatalf("key %q claimed by both %s and %s", key, owner, useCase)
			}
			keys[key] = useCase
		}
	}
}

func TestKeySpace_PhysicalKey_Format(t *testing.T) {
	ks := NewKeySpace("profile:")

	key := ks.PhysicalKey(KeyDescriptor{UseCase: UseCaseTerms, Type: KeyByInternalID, Value: "abc"})

	assert.Equal(t, "profile:terms:cid:abc", key)
}

func TestKeySpace_ImmutableIdentity_StableAcrossMutableChanges(t *testing.T) {
	ks := NewKeySpace("profile:")

	before := fullSnapshot()
	after := fullSnapshot()
	after.UserID = "someone-else"
	after.DefaultAddressID = "addr-new"
	after.Email = "new@example.com"

	beforeKeys, err := ks.KeysFor(UseCaseIdentity, before)
	require.NoError(t, err)
	afterKeys, err := ks.KeysFor(UseCaseIdentity, after)
	require.NoError(t, err)

	assert.Equal(t, beforeKeys[2].Value, afterKeys[2].Value,
		"immutable identity key must not move when mutable fields change")
}
