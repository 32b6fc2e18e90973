package cpu

import "testing"

func TestConditionEval(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
		f    flags
		want bool
	}{
		{"EQ/Z set", CondEQ, flags{Z: true}, true},
		{"EQ/Z clear", CondEQ, flags{Z: false}, false},
		{"CS/C set", CondCS, flags{C: true}, true},
		{"HI needs C and not Z", CondHI, flags{C: true, Z: false}, true},
		{"HI fails when Z set", CondHI, flags{C: true, Z: true}, false},
		{"GE when N==V", CondGE, flags{N: true, V: true}, true},
		{"LT when N!=V", CondLT, flags{N: true, V: false}, true},
		{"GT excludes Z", CondGT, flags{Z: true, N: true, V: true}, false},
		{"LE includes Z", CondLE, flags{Z: true}, true},
		{"AL always true", CondAL, flags{}, true},
		{"NV always false", CondNV, flags{N: true, Z: true, C: true, V: true}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRegisters()
			r.SetFlagN(c.f.N)
			r.SetFlagZ(c.f.Z)
			r.SetFlagC(c.f.C)
			r.SetFlagV(c.f.V)
			if got := c.cond.Eval(r); got != c.want {
				t.Fatalf("%v.Eval(%+v) = %t, want %t", c.cond, c.f, got, c.want)
			}
		})
	}
}
