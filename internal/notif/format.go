package notif

import (
	"bytes"
	"encoding/json"
)

func formatMarkdown(fields Fields) string {
	msg := bytes.NewBufferString("")
	for _, field := range fields {
		msg.WriteString("#### ")
		msg.WriteString(field.Name)
		msg.WriteRune('\n')
		msg.WriteString(field.Value)
		msg.WriteRune('\n')
	}
	return msg.String()
}

func formatPlain(fields Fields) string {
	msg := bytes.NewBufferString("")
	for _, field := range fields {
		msg.WriteString(field.Name)
		msg.WriteString(": ")
		msg.WriteString(field.Value)
		msg.WriteRune('\n')
	}
	return msg.String()
}

func formatDiscord(fields Fields) (string, error) {
	if fields == nil {
		fields = Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
