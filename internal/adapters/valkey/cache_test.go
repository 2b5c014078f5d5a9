package valkey

import "testing"

func TestKey(t *testing.T) {
	if got := Key("zones:merchant:m-1"); got != "fencekeeper:zones:merchant:m-1" {
		t.Errorf("unexpected key %q", got)
	}
}
