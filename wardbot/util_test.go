package wardbot

import (
	"testing"
	"time"
)

func TestPluralize(t *testing.T) {
	checkString(Pluralize(0, " day"), "0 days", t)
	checkString(Pluralize(1, " day"), "1 day", t)
	checkString(Pluralize(2, " day"), "2 days", t)
	checkString(Pluralize(-1, " day"), "-1 days", t)
}

func TestTimeDiff(t *testing.T) {
	checkString(TimeDiff(1*time.Second), "1 second", t)
	checkString(TimeDiff(60*time.Second), "60 seconds", t)
	checkString(TimeDiff(90*time.Second), "1 minute", t)
	checkString(TimeDiff(150*time.Second), "2 minutes", t)
	checkString(TimeDiff(60*time.Minute), "60 minutes", t)
	checkString(TimeDiff(61*time.Minute), "1 hour", t)
	checkString(TimeDiff(2*time.Hour+3*time.Minute), "2 hours and 3 minutes", t)
	checkString(TimeDiff(24*time.Hour), "1 day", t)
	checkString(TimeDiff(25*time.Hour), "1 day", t)
	checkString(TimeDiff(27*time.Hour), "1 day and 3 hours", t)
	checkString(TimeDiff(365*24*time.Hour), "1 year", t)
	checkString(TimeDiff(400*24*time.Hour), "1 year and 35 days", t)
}

func TestSBatoi(t *testing.T) {
	Check(SBatoi("12345"), uint64(12345), t)
	Check(SBatoi("!12345"), uint64(12345), t)
	Check(SBatoi("&12345"), uint64(12345), t)
	Check(SBatoi("123\u200B45"), uint64(12345), t)
	Check(SBatoi(""), uint64(0), t)
	Check(SBatoi("notanumber"), uint64(0), t)
}

func TestSBitoa(t *testing.T) {
	checkString(SBitoa(0), "0", t)
	checkString(SBitoa(12345), "12345", t)
	checkString(SBitoa(18446744073709551615), "18446744073709551615", t)
}

func TestStripPing(t *testing.T) {
	checkString(StripPing("<@123>"), "123", t)
	checkString(StripPing("<@!123>"), "123", t)
	checkString(StripPing("<@&123>"), "123", t)
	checkString(StripPing("<#123>"), "123", t)
	checkString(StripPing("123"), "123", t)
}

func TestPingAtoi(t *testing.T) {
	Check(PingAtoi("<@123>"), uint64(123), t)
	Check(PingAtoi("<@!123>"), uint64(123), t)
	Check(PingAtoi("<#456>"), uint64(456), t)
	Check(PingAtoi("789"), uint64(789), t)
}

func TestSnowflakeTime(t *testing.T) {
	Check(SnowflakeTime(175928847299117063).UTC().Unix(), int64(1462015105), t)
	Check(SnowflakeTime(0).UTC().Unix(), int64(1420070400), t)
}

func TestParseArguments(t *testing.T) {
	args, indices := ParseArguments(`help userinfo "some user" last`)
	Check(args, []string{"help", "userinfo", "some user", "last"}, t)
	Check(indices, []int{1, 6, 15, 27}, t)

	args, indices = ParseArguments("")
	checkInt(len(args), 0, t)
	checkInt(len(indices), 0, t)

	args, _ = ParseArguments("   spaced   out   ")
	Check(args, []string{"spaced", "out"}, t)
}

func TestRemoveSliceString(t *testing.T) {
	s := []string{"a", "b", "c"}
	Check(RemoveSliceString(&s, "b"), true, t)
	Check(s, []string{"a", "c"}, t)
	Check(RemoveSliceString(&s, "missing"), false, t)
	Check(s, []string{"a", "c"}, t)
}

func TestBoolXOR(t *testing.T) {
	Check(boolXOR(false, false), false, t)
	Check(boolXOR(true, false), true, t)
	Check(boolXOR(false, true), true, t)
	Check(boolXOR(true, true), false, t)
}

func TestSinceUTC(t *testing.T) {
	d := SinceUTC(time.Now().UTC().Add(-time.Minute))
	if d < time.Minute || d > time.Minute+10*time.Second {
		t.Errorf("expected roughly a minute, got %v", d)
	}
}
