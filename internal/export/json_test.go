package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerlab/transistordb/internal/repository"
)

func TestJSONRoundTripsThroughStoreCodec(t *testing.T) {
	tr := igbtFixture(t)
	f, err := JSON(tr)
	require.NoError(t, err)
	assert.Equal(t, "FF300R12KE4.json", f.Name)

	back, err := repository.Decode(f.Data)
	require.NoError(t, err)
	assert.Equal(t, tr.Name, back.Name)
	assert.Equal(t, tr.Switch.Channel[0].Graph, back.Switch.Channel[0].Graph)
	assert.Equal(t, tr.Diode.ERr[1].GraphIE, back.Diode.ERr[1].GraphIE)
}

func TestJoinFloats(t *testing.T) {
	assert.Equal(t, "0.00 1.50 2.25", joinFloats([]float64{0, 1.5, 2.25}, 2))
	assert.Equal(t, "25 150", joinFloats([]float64{25, 150}, 0))
	assert.Equal(t, "", joinFloats(nil, 2))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "25", num(25))
	assert.Equal(t, "3.6", num(3.6))
	assert.Equal(t, "1e-06", num(1e-6))
}
