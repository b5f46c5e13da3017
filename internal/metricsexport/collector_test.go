package metricsexport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	arc "github.com/arclabs/arc-runtime"
)

func TestCollectorRegistersAndScrapesWithoutError(t *testing.T) {
	m := arc.NewMetrics()
	m.RecordTick(1_000_000, 4)
	m.RecordWASMPanic()

	c := NewCollector(m)
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 9, count)
}
