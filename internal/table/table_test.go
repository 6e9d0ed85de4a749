package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() *Table {
	return &Table{
		Header: []string{"State", "Area"},
		Rows: []Row{
			{"California", "423967"},
			{"Texas", "695662"},
			{"New York", "141297"},
			{"Florida", "170312"},
			{"Illinois", "149995"},
		},
	}
}

func TestHeadTail(t *testing.T) {
	tbl := sample()

	tests := []struct {
		name string
		got  *Table
		want []string
	}{
		{"head 2", tbl.Head(2), []string{"California", "Texas"}},
		{"head 0", tbl.Head(0), nil},
		{"head beyond len", tbl.Head(10), []string{"California", "Texas", "New York", "Florida", "Illinois"}},
		{"head negative", tbl.Head(-3), []string{"California", "Texas"}},
		{"tail 2", tbl.Tail(2), []string{"Florida", "Illinois"}},
		{"tail beyond len", tbl.Tail(7), []string{"California", "Texas", "New York", "Florida", "Illinois"}},
		{"tail negative", tbl.Tail(-4), []string{"Illinois"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var states []string
			for _, row := range tt.got.Rows {
				states = append(states, row[0])
			}
			assert.Equal(t, tt.want, states)
			assert.Equal(t, tbl.Header, tt.got.Header)
		})
	}
}

func TestHead_AppendDoesNotClobberSource(t *testing.T) {
	tbl := sample()
	head := tbl.Head(1)
	head.Rows = append(head.Rows, Row{"X", "0"})

	assert.Equal(t, "Texas", tbl.Rows[1][0])
}

func TestColumn(t *testing.T) {
	tbl := &Table{
		Header: []string{"a", "B"},
		Rows:   []Row{{"1", "2"}, {"3"}},
	}

	col, ok := tbl.Column("b")
	assert.True(t, ok)
	assert.Equal(t, []string{"2", ""}, col)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
}

func TestMismatchedAndRecords(t *testing.T) {
	tbl := &Table{
		Header: []string{"a", "b"},
		Rows:   []Row{{"1", "2"}, {"3"}, {"4", "5", "6"}},
	}

	assert.Equal(t, []int{1, 2}, tbl.Mismatched())
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3"}, {"4", "5", "6"}}, tbl.Records())
	assert.Equal(t, 2, tbl.Width())
}
