package lcd

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestLineString(t *testing.T) {
	assert.Equal(t, "L1", Line1.String())
	assert.Equal(t, "L2", Line2.String())
	assert.Equal(t, "N/A", Line(0).String())
}

func TestDisplayCommands(t *testing.T) {
	tm := DefaultTiming()
	tt := []struct {
		name    string
		op      func(d *Display)
		nibbles []byte
		settle  int64
	}{
		{"clear", (*Display).Clear, []byte{0x0, 0x1}, int64(tm.Clear)},
		{"home", (*Display).Home, []byte{0x0, 0x2}, int64(tm.Command)},
		{"second line", (*Display).SecondLine, []byte{0xC, 0x0}, int64(tm.Command)},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			e, rec, sleeps := newTestEngine()
			d := NewDisplay(e, 16)

			tc.op(d)

			assert.Equal(t, tc.nibbles, rec.nibbles())
			for _, l := range rec.latches {
				assert.False(t, l.data)
			}
			s := *sleeps
			assert.Equal(t, tc.settle, int64(s[len(s)-1]))
		})
	}
}

func TestWriteCharNeverMovesLine(t *testing.T) {
	e, rec, _ := newTestEngine()
	d := NewDisplay(e, 16)

	for i := 0; i < 17; i++ {
		d.WriteChar('a' + byte(i))
	}

	assert.Len(t, rec.latches, 34)
	for _, l := range rec.latches {
		assert.True(t, l.data)
	}
}

func TestWriteCharForwardsAnyByte(t *testing.T) {
	e, rec, _ := newTestEngine()
	d := NewDisplay(e, 16)

	d.WriteChar(0x00)
	d.WriteChar(0xFF)

	assert.Equal(t, []byte{0x0, 0x0, 0xF, 0xF}, rec.nibbles())
}

func TestPrintPadsLine(t *testing.T) {
	e, rec, _ := newTestEngine()
	d := NewDisplay(e, 16)

	d.Print(Line2, "hi")

	n := rec.nibbles()
	assert.Equal(t, []byte{0xC, 0x0}, n[:2])
	assert.Len(t, n, 2+2*16)
	assert.Equal(t, []byte{0x6, 0x8, 0x6, 0x9, 0x2, 0x0}, n[2:8])
}

func TestPrintCutsLongMessage(t *testing.T) {
	e, rec, _ := newTestEngine()
	d := NewDisplay(e, 8)

	d.Print(Line1, "0123456789abcdef")

	assert.Len(t, rec.latches, 2+2*8)
}

func TestDefaultColumns(t *testing.T) {
	e, _, _ := newTestEngine()
	assert.Equal(t, DefaultColumns, NewDisplay(e, 0).Columns())
}
