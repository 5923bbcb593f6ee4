package log

import (
	"strings"
	"testing"

	"github.com/dusk-network/rusk-vm/logger/glog"
)

func TestFieldsStringEmpty(t *testing.T) {
	if got := Fields{}.String(); got != "" {
		t.Errorf("Fields{}.String() = %q, want empty", got)
	}
}

func TestFieldsStringSingle(t *testing.T) {
	got := Fields{"contract": "0xabc"}.String()
	if got != "contract=0xabc" {
		t.Errorf("Fields.String() = %q, want %q", got, "contract=0xabc")
	}
}

func TestFieldsStringMultiple(t *testing.T) {
	got := Fields{"a": 1, "b": "two"}.String()
	for _, want := range []string{"a=1", "b=two"} {
		if !strings.Contains(got, want) {
			t.Errorf("Fields.String() = %q, missing %q", got, want)
		}
	}
}

func TestSetVerbosity(t *testing.T) {
	defer SetVerbosity(int(*glog.GetVerbosity()))

	SetVerbosity(int(Debug))
	if got := *glog.GetVerbosity(); got != glog.Level(Debug) {
		t.Errorf("GetVerbosity() = %v, want %v", got, Debug)
	}
	if got := *glog.GetDisplayable(); got != glog.Level(Debug) {
		t.Errorf("GetDisplayable() = %v, want %v", got, Debug)
	}
}
