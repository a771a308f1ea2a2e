package idx_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/certquest/sessiond/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.False(t, id.IsZero())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestSameInstantStillUnique(t *testing.T) {
	// Session tokens minted within the same second must carry distinct ids.
	at := time.Unix(1700000000, 0).UTC()

	seen := make(map[idx.ID]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := idx.NewAt(at)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, 64)
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)

	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
	require.True(t, idx.Zero.Time().IsZero())
}

func TestMustParse(t *testing.T) {
	require.NotPanics(t, func() { _ = idx.MustParse("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV") })
	require.Panics(t, func() { _ = idx.MustParse("nope") })
}

func TestParseCanonicalises(t *testing.T) {
	id := idx.New()

	parsed, err := idx.Parse("  " + strings.ToLower(id.String()) + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestGeneratorDeterministicWithFixedEntropy(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 64)
	at := time.UnixMilli(1700000000123)

	a := idx.NewGenerator(bytes.NewReader(seed)).NewAt(at)
	b := idx.NewGenerator(bytes.NewReader(seed)).NewAt(at)

	require.Equal(t, a, b)
	require.Equal(t, at.UTC(), a.Time())
}

func TestGeneratorSortsWithinMillisecond(t *testing.T) {
	g := idx.NewGenerator(bytes.NewReader(bytes.Repeat([]byte{0x01}, 1024)))
	at := time.UnixMilli(1700000000000)

	prev := g.NewAt(at)
	for range 10 {
		next := g.NewAt(at)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}
