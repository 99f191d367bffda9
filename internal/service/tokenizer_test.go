package service

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "only stopwords", in: "Show me the best", want: []string{"best"}},
		{name: "search phrasing", in: "search for wireless headphones", want: []string{"wireless", "headphones"}},
		{name: "case and spacing", in: "  Gaming\tLAPTOP  ", want: []string{"gaming", "laptop"}},
		{name: "duplicates collapse", in: "usb usb-c usb", want: []string{"usb", "usb-c"}},
		{name: "no stemming", in: "laptops looking", want: []string{"laptops"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
