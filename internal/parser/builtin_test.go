package parser

import (
	"testing"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

func TestBuiltin_Parse(t *testing.T) {
	p := NewBuiltin(fakePseudonymizer{})

	tests := []struct {
		name  string
		input entry.Raw
		want  entry.Entry
	}{
		{
			name:  "entering room",
			input: "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: Some Room",
			want:  &entry.EnteringRoom{Timestamp: ts("2022.03.04 21:50:19"), RoomName: "Some Room"},
		},
		{
			name:  "player joined",
			input: "2022.03.04 21:50:22 Log        -  [Behaviour] OnPlayerJoined E.HOBA",
			want: &entry.PlayerJoin{
				Timestamp:      ts("2022.03.04 21:50:22"),
				UserName:       "E.HOBA",
				PseudoUserName: "pseudo E.HOBA",
			},
		},
		{
			name:  "player left",
			input: "2022.03.05 03:13:50 Log        -  [Behaviour] OnPlayerLeft E.HOBA",
			want: &entry.PlayerLeft{
				Timestamp:      ts("2022.03.05 03:13:50"),
				UserName:       "E.HOBA",
				PseudoUserName: "pseudo E.HOBA",
			},
		},
		{
			name:  "name with spaces",
			input: "2022.03.04 21:50:22 Log - [Behaviour] OnPlayerJoined Some Body",
			want: &entry.PlayerJoin{
				Timestamp:      ts("2022.03.04 21:50:22"),
				UserName:       "Some Body",
				PseudoUserName: "pseudo Some Body",
			},
		},
		{
			name:  "unrelated behaviour line",
			input: `2022.03.04 21:50:22 Log        -  [Behaviour] Initialized PlayerAPI "E.HOBA" is remote`,
		},
		{
			name:  "no prefix",
			input: "[Behaviour] OnPlayerJoined E.HOBA",
		},
		{
			name:  "empty room name",
			input: "2022.03.04 21:50:19 Log        -  [Behaviour] Entering Room: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			assertEntry(t, got, tt.want)
		})
	}
}

func assertEntry(t *testing.T, got, want entry.Entry) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("got %#v, want nil", got)
		}
		return
	}
	if got == nil {
		t.Fatalf("got nil, want %#v", want)
	}
	if got.TypeID() != want.TypeID() {
		t.Fatalf("TypeID = %q, want %q", got.TypeID(), want.TypeID())
	}
	gf, wf := got.Fields(), want.Fields()
	for i := range wf {
		if !valueEqual(gf[i].Value, wf[i].Value) {
			t.Errorf("%s = %#v, want %#v", wf[i].Name, gf[i].Value, wf[i].Value)
		}
	}
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case entry.Timestamp:
		bv, ok := b.(entry.Timestamp)
		return ok && av.Equal(bv)
	case *float64:
		bv, ok := b.(*float64)
		if !ok || (av == nil) != (bv == nil) {
			return false
		}
		return av == nil || *av == *bv
	case map[string]string:
		bv, ok := b.(map[string]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if bv[k] != v {
				return false
			}
		}
		return true
	case map[entry.PlayerID][]string:
		bv, ok := b.(map[entry.PlayerID][]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || len(v) != len(w) {
				return false
			}
			for i := range v {
				if v[i] != w[i] {
					return false
				}
			}
		}
		return true
	default:
		return a == b
	}
}
