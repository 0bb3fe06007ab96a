package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powerlab/transistordb/internal/domain"
)

func TestDefaults(t *testing.T) {
	require.NoError(t, Load())

	assert.Equal(t, ":8080", APIAddr())
	assert.Equal(t, "json", DBMode())
	assert.Equal(t, "database", JSONFolder())
	assert.NotEmpty(t, ExchangeIndexURL())
	assert.Equal(t, "tcp://localhost:1883", MQTTBroker())
}

func TestQuickstart(t *testing.T) {
	require.NoError(t, Load())
	q := Quickstart()
	assert.Equal(t, 15.0, q.VG)
	assert.Equal(t, 25.0, q.TJOffset)
	assert.Equal(t, domain.Lenient, q.Mode)
}

func TestGateDefaultsPerDeviceType(t *testing.T) {
	require.NoError(t, Load())

	igbt := GateDefaultsFor(domain.TypeIGBT)
	assert.Equal(t, GateDefaults{VGOn: 15, VGOff: -15, VDChannel: 0, VDErr: 15}, igbt)

	mosfet := GateDefaultsFor(domain.TypeMOSFET)
	assert.Equal(t, GateDefaults{VGOn: 10, VGOff: 0, VDChannel: 0, VDErr: 10}, mosfet)

	sic := GateDefaultsFor(domain.TypeSiCMOSFET)
	assert.Equal(t, GateDefaults{VGOn: 15, VGOff: -4, VDChannel: 0, VDErr: 15}, sic)

	gan := GateDefaultsFor(domain.TypeGaN)
	assert.Equal(t, GateDefaults{VGOn: 6, VGOff: -3, VDChannel: 0, VDErr: 6}, gan)

	// Unknown types fall back to the IGBT values.
	unknown := GateDefaultsFor(domain.DeviceType("Thyristor"))
	assert.Equal(t, igbt, unknown)
}
