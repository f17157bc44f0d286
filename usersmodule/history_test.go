package usersmodule

import (
	"reflect"
	"testing"
)

func TestEscapeEntries(t *testing.T) {
	raw := []string{"", "PlainName", "||spoiler||", "@everyone", "discord.gg/evil"}
	expected := []string{"PlainName", "\\|\\|spoiler\\|\\|", "@\u200Beveryone", "[SANITIZED INVITE]"}
	if got := escapeEntries(raw); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v but got %v", expected, got)
	}

	if got := escapeEntries(nil); len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestHistoryFieldValue(t *testing.T) {
	checkString(historyFieldValue([]string{"One", "Two", "Three"}), "One, Two, Three", t)
	checkString(historyFieldValue(nil), "", t)
}
