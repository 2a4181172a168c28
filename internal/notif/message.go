package notif

import (
	"github.com/rs/zerolog"
)

type (
	Message struct {
		Title  string
		Level  zerolog.Level
		Fields Fields
		Color  Color
	}
	Field struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	Fields []Field
)

func (f *Fields) Add(name, value string) {
	*f = append(*f, Field{Name: name, Value: value})
}
