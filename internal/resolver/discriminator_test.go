package resolver

import (
	"testing"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestPublishedDiscriminatorsMatchDerivation(t *testing.T) {
	assert.Equal(t, ExecuteVaaV1, DeriveDiscriminator(consts.ResolverExecuteVaaV1Seed))
	assert.Equal(t, Discriminator{148, 184, 169, 222, 207, 8, 154, 127}, ExecuteVaaV1)

	assert.Equal(t, ResultAccount, DeriveDiscriminator(consts.ResolverResultAccountSeed))
	assert.Equal(t, Discriminator{34, 185, 243, 199, 181, 255, 28, 227}, ResultAccount)

	assert.NotEqual(t, ExecuteVaaV1, ResultAccount)
}

func TestAnchorDiscriminators(t *testing.T) {
	assert.Equal(t, Discriminator{246, 28, 6, 87, 251, 45, 50, 42}, AccountDiscriminator("MyAccount"))
	assert.Equal(t, Discriminator{112, 62, 48, 33, 152, 111, 231, 21}, AccountDiscriminator("LUT"))
	assert.Equal(t, Discriminator{162, 253, 155, 217, 153, 18, 201, 68}, InstructionDiscriminator("example_instruction"))
	assert.Equal(t, Discriminator{195, 77, 54, 118, 36, 151, 194, 202}, InstructionDiscriminator("execute_vaa_v1"))
}

func TestDiscriminatorHelpers(t *testing.T) {
	assert.Equal(t, uint64(0x94b8a9decf089a7f), ExecuteVaaV1.Uint64())
	assert.Equal(t, "94b8a9decf089a7f", ExecuteVaaV1.String())

	assert.True(t, ExecuteVaaV1.HasPrefix(append(ExecuteVaaV1[:], 1, 2)))
	assert.False(t, ExecuteVaaV1.HasPrefix(ExecuteVaaV1[:7]))
	assert.False(t, ExecuteVaaV1.HasPrefix(ResultAccount[:]))
}

func TestPlaceholderTable(t *testing.T) {
	assert.Equal(t, "payer_00000000000000000000000000", string(PlaceholderPayer[:]))
	assert.Equal(t, "posted_vaa_000000000000000000000", string(PlaceholderPostedVaa[:]))
	assert.Equal(t, "shim_vaa_sigs_000000000000000000", string(PlaceholderShimVaaSigs[:]))
	assert.Equal(t, "keypair_00_000000000000000000000", string(PlaceholderKeypairs[0][:]))
	assert.Equal(t, "keypair_09_000000000000000000000", string(PlaceholderKeypairs[9][:]))

	all := Placeholders()
	assert.Len(t, all, 13)

	p, ok := LookupPlaceholder(PlaceholderKeypairs[7])
	assert.True(t, ok)
	assert.Equal(t, RoleKeypair, p.Role)
	assert.Equal(t, 7, p.Index)

	p, ok = LookupPlaceholder(PlaceholderPayer)
	assert.True(t, ok)
	assert.Equal(t, RolePayer, p.Role)

	assert.False(t, IsPlaceholder(types.Pubkey{}))
}
