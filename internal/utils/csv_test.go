package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSVRow(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{
			name:   "plain fields",
			fields: []string{"a", "b", "c"},
			want:   `"a","b","c"`,
		},
		{
			name:   "embedded quotes doubled",
			fields: []string{`say "hi"`, "plain"},
			want:   `"say ""hi""","plain"`,
		},
		{
			name:   "commas stay inside the quotes",
			fields: []string{"one,two", `{"k":"v"}`},
			want:   `"one,two","{""k"":""v""}"`,
		},
		{
			name:   "empty field",
			fields: []string{"", "x"},
			want:   `"","x"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CSVRow(tt.fields))
		})
	}
}
