package idgen

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^REP-\d{13}-[0-9a-f]{9}$`)

func TestGenerate_Formato(t *testing.T) {
	g := New(nil)
	id := g.Generate(PrefixReplenishment)
	assert.Regexp(t, idPattern, id)
}

func TestGenerateUpper_SufijoEnMayusculas(t *testing.T) {
	g := New(nil)
	id := g.GenerateUpper(PrefixTracking)
	parts := strings.Split(id, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "TRK", parts[0])
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
	assert.Len(t, parts[2], suffixLen)
}

func TestGenerate_TiempoNoRetrocede(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(time.Millisecond)}
	i := 0
	g := New(func() time.Time {
		tm := times[i]
		i++
		return tm
	})

	got := make([]int64, 0, len(times))
	for range times {
		parts := strings.Split(g.Generate("TO"), "-")
		n, err := strconv.ParseInt(parts[1], 10, 64)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int64{1_700_000_000_000, 1_700_000_000_000, 1_700_000_000_001}, got)
}

func TestGenerate_ConcurrenteSinColisiones(t *testing.T) {
	g := New(nil)
	const workers, perWorker = 16, 200

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Generate(PrefixReplenishment))
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}
