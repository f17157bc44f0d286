package wardbot

import "testing"

func TestVersion(t *testing.T) {
	v := Version{1, 2, 3, 4}
	checkString(v.String(), "1.2.3.4", t)
	checkInt(v.Integer(), 16909060, t)
	v = Version{1, 2, 3, 0}
	checkString(v.String(), "1.2.3", t)
	checkInt(v.Integer(), 16909056, t)
	v = Version{1, 2, 0, 0}
	checkString(v.String(), "1.2", t)
	checkInt(v.Integer(), 16908288, t)
	v = Version{1, 0, 0, 0}
	checkString(v.String(), "1.0", t)
	checkInt(v.Integer(), 16777216, t)
	v = Version{0, 0, 0, 0}
	checkString(v.String(), "0.0", t)
	checkInt(v.Integer(), 0, t)
}
