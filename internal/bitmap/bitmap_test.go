package bitmap

import (
	"bytes"
	"errors"
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBitmap(r *rand.Rand, w, h int) *Bitmap {
	b := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, r.Intn(2) == 1)
		}
	}
	return b
}

func TestPackSinglePixelCorner(t *testing.T) {
	b := New(16, 8)
	b.Set(15, 7, true)

	packed := Pack(b)
	require.Len(t, packed, 16)
	for i, v := range packed[:15] {
		assert.Zerof(t, v, "byte %d", i)
	}
	assert.Equal(t, byte(0x01), packed[15])

	got, err := Unpack(packed, 16, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())
	assert.True(t, got.Get(15, 7))
}

func TestPackBitOrder(t *testing.T) {
	b := New(10, 2)
	b.Set(0, 0, true)
	b.Set(8, 0, true)
	b.Set(9, 1, true)

	assert.Equal(t, []byte{0x80, 0x80, 0x00, 0x40}, Pack(b))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	sizes := [][2]int{{1, 1}, {7, 3}, {8, 8}, {9, 7}, {16, 8}, {150, 70}, {33, 1}, {0, 5}}
	for _, sz := range sizes {
		b := randomBitmap(r, sz[0], sz[1])
		packed := Pack(b)
		assert.Len(t, packed, PackedLen(sz[0], sz[1]))

		got, err := Unpack(packed, sz[0], sz[1])
		require.NoError(t, err)
		assert.Truef(t, b.Equal(got), "%dx%d round trip mismatch", sz[0], sz[1])
	}
}

func TestUnpackLegacyLayout(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	b := randomBitmap(r, 10, 7)

	legacy := PackLegacy(b)
	require.Len(t, legacy, 9)
	require.NotEqual(t, PackedLen(10, 7), len(legacy))

	got, err := Unpack(legacy, 10, 7)
	require.NoError(t, err)
	assert.True(t, b.Equal(got))
}

func TestUnpackWrongLength(t *testing.T) {
	_, err := Unpack(make([]byte, 5), 16, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLength))
}

func TestUnpackWrongLengthDoesNotAllocate(t *testing.T) {
	header := []byte{0xff, 0xff, 0xff, 0xff}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := UnmarshalPIX(header, 0xffff, 0xffff)
	runtime.ReadMemStats(&after)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLength))
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20), "rejected payload allocated a bitmap")
}

func TestExpandScenario(t *testing.T) {
	g := Gaps{
		X: Axis{Run: 5, Gap: 2},
		Y: Axis{Run: 7, Gap: 2, Trailing: true},
	}
	r := rand.New(rand.NewSource(3))
	b := randomBitmap(r, 10, 7)

	p := ExpandToPhysical(b, g)
	assert.Equal(t, 12, p.Width())
	assert.Equal(t, 9, p.Height())
	assert.Equal(t, b.Count(), p.Count())

	// Gap columns and rows stay dark.
	for y := 0; y < p.Height(); y++ {
		assert.False(t, p.Get(5, y))
		assert.False(t, p.Get(6, y))
	}
	for x := 0; x < p.Width(); x++ {
		assert.False(t, p.Get(x, 7))
		assert.False(t, p.Get(x, 8))
	}

	back, err := CompressFromPhysical(p, g)
	require.NoError(t, err)
	assert.True(t, b.Equal(back))
}

func TestExpandCompressRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	layouts := []Gaps{
		{},
		{X: Axis{Run: 5, Gap: 1}, Y: Axis{Run: 7, Gap: 1}},
		{X: Axis{Run: 5, Gap: 3, Trailing: true}, Y: Axis{Run: 7, Gap: 2}},
		{X: Axis{Run: 150, Gap: 4}, Y: Axis{Run: 70, Gap: 4}},
	}
	for _, g := range layouts {
		for _, sz := range [][2]int{{1, 1}, {5, 7}, {10, 7}, {31, 15}, {150, 70}} {
			b := randomBitmap(r, sz[0], sz[1])
			back, err := CompressFromPhysical(ExpandToPhysical(b, g), g)
			require.NoError(t, err)
			assert.Truef(t, b.Equal(back), "%+v %dx%d", g, sz[0], sz[1])
		}
	}
}

func TestPointIsInjective(t *testing.T) {
	g := Gaps{X: Axis{Run: 5, Gap: 2}, Y: Axis{Run: 7, Gap: 2}}
	seen := make(map[[2]int]bool)
	for y := 0; y < 21; y++ {
		for x := 0; x < 25; x++ {
			px, py := g.Point(x, y)
			key := [2]int{px, py}
			require.Falsef(t, seen[key], "(%d,%d) collides at %v", x, y, key)
			seen[key] = true
		}
	}
}

func TestCompressRejectsImpossibleSize(t *testing.T) {
	g := Gaps{X: Axis{Run: 5, Gap: 2}}
	// 6 columns: 5 logical lamps give 5, 6 give 8.
	_, err := CompressFromPhysical(New(6, 1), g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensions))
}

func TestPIXRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	b := randomBitmap(r, 150, 70)

	buf := new(bytes.Buffer)
	require.NoError(t, EncodePIX(buf, b))
	assert.Equal(t, pixHeader+PackedLen(150, 70), buf.Len())

	got, err := DecodePIX(buf, 150, 70)
	require.NoError(t, err)
	assert.True(t, b.Equal(got))
}

func TestPIXDimensionMismatch(t *testing.T) {
	data, err := MarshalPIX(New(10, 7))
	require.NoError(t, err)

	_, err = UnmarshalPIX(data, 150, 70)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensions))
}

func TestPIXTruncated(t *testing.T) {
	_, err := UnmarshalPIX([]byte{0x0a}, 10, 7)
	assert.Error(t, err)

	data, err := MarshalPIX(New(10, 7))
	require.NoError(t, err)
	_, err = UnmarshalPIX(data[:len(data)-1], 10, 7)
	assert.True(t, errors.Is(err, ErrLength))
}
