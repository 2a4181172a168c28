package strutils_test

import (
	"strings"
	"testing"
	"time"

	. "github.com/maskserve/maskserve/internal/utils/strutils"
	. "github.com/maskserve/maskserve/internal/utils/testing"
)

var alphaNumeric = func() string {
	var s strings.Builder
	for i := range 'z' - 'a' + 1 {
		s.WriteRune('a' + i)
		s.WriteRune('A' + i)
		s.WriteRune(',')
	}
	for i := range '9' - '0' + 1 {
		s.WriteRune('0' + i)
		s.WriteRune(',')
	}
	return s.String()
}()

func TestSplit(t *testing.T) {
	tests := map[string]rune{
		"":  0,
		"1": '1',
		",": ',',
	}
	for sep, rsep := range tests {
		t.Run(sep, func(t *testing.T) {
			expected := strings.Split(alphaNumeric, sep)
			ExpectDeepEqual(t, SplitRune(alphaNumeric, rsep), expected)
			ExpectEqual(t, JoinRune(expected, rsep), alphaNumeric)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	ExpectEqual(t, FormatDuration(0), "0 Seconds")
	ExpectEqual(t, FormatDuration(90*time.Second), "1 minute and 30 seconds")
	ExpectEqual(t, FormatDuration(49*time.Hour+5*time.Minute), "2 days, 1 hour and 5 minutes")
	ExpectEqual(t, FormatDuration(-2*time.Hour), "overdue by 2 hours")
}
