package compute

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/ljmd/internal/dynamo"
)

func latticeWithJitter(side int, spacing float64, seed int64) (dynamo.Vectors, float64) {
	rng := rand.New(rand.NewSource(seed))
	n := side * side * side
	pos := dynamo.NewVectors(n)
	idx := 0
	for a := 0; a < side; a++ {
		for b := 0; b < side; b++ {
			for c := 0; c < side; c++ {
				pos.X[idx] = (float64(a)+0.5)*spacing + 0.05*rng.NormFloat64()
				pos.Y[idx] = (float64(b)+0.5)*spacing + 0.05*rng.NormFloat64()
				pos.Z[idx] = (float64(c)+0.5)*spacing + 0.05*rng.NormFloat64()
				idx++
			}
		}
	}
	return pos, float64(side) * spacing
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"scalar", "scalar", false},
		{"lanes", "lanes", false},
		{"", "", false},
		{"auto", "", false},
		{"cuda", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && tt.want != "" && b.Name() != tt.want {
				t.Errorf("ByName(%q).Name() = %q, want %q", tt.name, b.Name(), tt.want)
			}
		})
	}
}

func TestListBackends(t *testing.T) {
	got := ListBackends()
	want := []string{"auto", "lanes", "scalar"}
	if len(got) != len(want) {
		t.Fatalf("ListBackends() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListBackends()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAutoSelectMatchesISA(t *testing.T) {
	b := AutoSelectBackend()
	if DetectISA() == ISAPortable {
		if b.Name() != "scalar" {
			t.Errorf("portable host selected %s", b.Name())
		}
	} else if b.Name() != "lanes" {
		t.Errorf("host with %s selected %s", DetectISA(), b.Name())
	}
}

func TestSetGetBackend(t *testing.T) {
	orig := GetBackend()
	defer SetBackend(orig)

	s := NewScalarBackend()
	SetBackend(s)
	if GetBackend() != Backend(s) {
		t.Error("GetBackend did not return the backend just set")
	}
	if b, err := ByName(""); err != nil || b != Backend(s) {
		t.Errorf("ByName(\"\") = %v, %v; want the active backend", b, err)
	}
}

func TestBackendsAgree(t *testing.T) {
	pos, box := latticeWithJitter(5, 1.3, 9)
	n := pos.Len()

	scalar, lanes := NewScalarBackend(), NewLaneBackend()
	fs, fl := dynamo.NewVectors(n), dynamo.NewVectors(n)
	scalar.Forces(pos, fs, box)
	lanes.Forces(pos, fl, box)

	for i := 0; i < n; i++ {
		for _, pair := range [][2]float64{{fs.X[i], fl.X[i]}, {fs.Y[i], fl.Y[i]}, {fs.Z[i], fl.Z[i]}} {
			if math.Abs(pair[0]-pair[1]) > 1e-9*(1+math.Abs(pair[0])) {
				t.Fatalf("particle %d: scalar %v, lanes %v", i, pair[0], pair[1])
			}
		}
	}

	es, el := scalar.Energy(pos, box), lanes.Energy(pos, box)
	if math.Abs(es-el) > 1e-9*math.Abs(es) {
		t.Errorf("energy: scalar %v, lanes %v", es, el)
	}
}

func BenchmarkBackends(b *testing.B) {
	pos, box := latticeWithJitter(8, 1.2, 1)
	force := dynamo.NewVectors(pos.Len())

	for _, be := range []Backend{NewScalarBackend(), NewLaneBackend()} {
		b.Run(be.Name(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				be.Forces(pos, force, box)
			}
		})
	}
}
