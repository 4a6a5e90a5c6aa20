package keys

import (
	"regexp"
	"strings"
	"testing"
	"unicode"
)

var df = []byte(`{"columns":["DBT","RH"],"index":[0],"data":[[1.0,50]]}`)

func TestDeterminism_SameInputsSameKey(t *testing.T) {
	k1 := Render("yearly-chart", "global", "DBT", df, []byte(`{"city":"Oslo"}`))
	k2 := Render("yearly-chart", " Global ", "dbt", df, []byte(`{"city":"Oslo"}`))
	if k1 != k2 {
		t.Fatalf("determinism failed:\n k1=%s\n k2=%s", k1, k2)
	}
	if !regexp.MustCompile(`^render:yearly-chart:global:DBT:d=[0-9a-f]{16}:m=[0-9a-f]{16}$`).MatchString(k1) {
		t.Fatalf("unexpected key shape: %s", k1)
	}
}

func TestDifference_EveryInputChangesKey(t *testing.T) {
	base := Render("daily", "global", "DBT", df, nil)
	variants := []string{
		Render("heatmap", "global", "DBT", df, nil),
		Render("daily", "local", "DBT", df, nil),
		Render("daily", "global", "RH", df, nil),
		Render("daily", "global", "DBT", append([]byte(nil), append(df, ' ')...), nil),
		Render("daily", "global", "DBT", df, []byte(`{}`)),
	}
	for i, k := range variants {
		if k == base {
			t.Fatalf("variant %d produced the base key %s", i, k)
		}
	}
}

func TestUndeclaredInputs_Dash(t *testing.T) {
	k := Render("table-tmp-hum", "", "RH", df, nil)
	if !strings.HasPrefix(k, "render:table-tmp-hum:-:RH:") {
		t.Fatalf("unexpected key %s", k)
	}
}

func TestSession_SanitizesIDs(t *testing.T) {
	k := Session(" user 1:göteborg ")
	for _, r := range k {
		if r > unicode.MaxASCII {
			t.Fatalf("non-ASCII rune leaked into key: %q in %s", r, k)
		}
	}
	if k != "session:user_1-g-teborg" {
		t.Fatalf("session key=%s", k)
	}
}
