package cassette

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBlob is an in-memory Blob for tests.
type memBlob struct {
	data    []byte
	readErr error
	writes  int
}

func (m *memBlob) ReadBlob() ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *memBlob) WriteBlob(data []byte) error {
	m.writes++
	m.data = data
	return nil
}

func TestNew(t *testing.T) {
	assert.Len(t, New(4), 4*SectionSize)
	assert.Empty(t, New(0))
	assert.Empty(t, New(-1))
	assert.Equal(t, 4, Sections(New(4)))
}

func TestPatch(t *testing.T) {
	data := New(3)
	require.NoError(t, Patch(data, 1, []byte{0xAA, 0xBB}))
	assert.Equal(t, byte(0xAA), data[256])
	assert.Equal(t, byte(0xBB), data[257])
	assert.Equal(t, byte(0), data[255])
	assert.Equal(t, byte(0), data[258])

	// Spills into the next section but stays inside the array.
	long := make([]byte, 300)
	long[299] = 0x11
	require.NoError(t, Patch(data, 1, long))
	assert.Equal(t, byte(0x11), data[256+299])

	// Exactly filling the last section is allowed.
	require.NoError(t, Patch(data, 2, make([]byte, SectionSize)))
}

func TestPatchTooSmall(t *testing.T) {
	data := New(2)
	err := Patch(data, 1, make([]byte, SectionSize+1))
	assert.True(t, errors.Is(err, ErrBlobTooSmall), "got %v", err)

	err = Patch(data, 2, []byte{1})
	assert.True(t, errors.Is(err, ErrBlobTooSmall), "got %v", err)

	err = Patch(data, -1, []byte{1})
	assert.True(t, errors.Is(err, ErrBlobTooSmall), "got %v", err)
}

func TestPatchHugeSectionLeavesDataUntouched(t *testing.T) {
	for _, section := range []int{4, 1 << 55, 1 << 56, int(^uint(0) >> 1)} {
		data := New(4)
		var err error
		require.NotPanics(t, func() { err = Patch(data, section, []byte{0xAA, 0xBB}) }, "section %d", section)
		assert.True(t, errors.Is(err, ErrBlobTooSmall), "section %d: got %v", section, err)
		assert.Equal(t, New(4), data, "section %d", section)
	}

	// An empty program still needs an existing section.
	assert.True(t, errors.Is(Patch(New(1), 1, nil), ErrBlobTooSmall))
	assert.NoError(t, Patch(New(1), 0, nil))
}

func TestWriteSection(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	b := &memBlob{data: New(2)}
	require.NoError(t, WriteSection(b, 1, []byte{0x01, 0x02}, log))
	assert.Equal(t, 1, b.writes)
	assert.Equal(t, []byte{0x01, 0x02}, b.data[256:258])

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, 1, hook.LastEntry().Data["section"])
	assert.Equal(t, 2, hook.LastEntry().Data["bytes"])
}

func TestWriteSectionFailsWithoutWriting(t *testing.T) {
	b := &memBlob{data: New(1)}
	err := WriteSection(b, 1, []byte{0x01}, nil)
	assert.True(t, errors.Is(err, ErrBlobTooSmall))
	assert.Equal(t, 0, b.writes)

	b = &memBlob{readErr: errors.Wrap(ErrBlobCorrupt, "bad")}
	err = WriteSection(b, 0, []byte{0x01}, nil)
	assert.True(t, errors.Is(err, ErrBlobCorrupt))
	assert.Equal(t, 0, b.writes)
}
