package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	k, ok := Get(GrassBlockID)
	require.True(t, ok)
	assert.Equal(t, "grass", k.Name)
	assert.False(t, k.IsResource)

	_, ok = Get(BlockID(200))
	assert.False(t, ok, "неизвестный ID не должен находиться в каталоге")
	assert.Equal(t, "unknown(200)", BlockID(200).String())
}

func TestResourcesInCatalogOrder(t *testing.T) {
	res := Resources()
	require.Len(t, res, 3)
	assert.Equal(t, StoneBlockID, res[0].ID)
	assert.Equal(t, CoalOreBlockID, res[1].ID)
	assert.Equal(t, IronOreBlockID, res[2].ID)

	for _, r := range res {
		assert.Greater(t, r.Scarcity, 0.0)
		assert.Greater(t, r.Scale.X(), 0.0)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	all := All()
	all[GrassBlockID].Name = "changed"

	k, _ := Get(GrassBlockID)
	assert.Equal(t, "grass", k.Name, "изменение копии не должно затрагивать каталог")
}

func TestSolidExcludesEmpty(t *testing.T) {
	for _, k := range Solid() {
		assert.NotEqual(t, EmptyBlockID, k.ID)
	}
	assert.Len(t, Solid(), len(All())-1)
}
