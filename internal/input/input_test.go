package input

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const planeFile = `# slip plane structure
-1e-6 0 0
1e-6 0 0
0 1 0
0 0 0
# dislocations
2
2e-7 0 0   1 1 0   1 -1 0   5e-9  1
-3e-7 0 0  -1 -1 0  1 -1 0  5e-9  0

# sources
1
0 0 0   1 1 0   1 -1 0   5e-9  1.5e6  20
`

func TestReadSlipPlane(t *testing.T) {
	sp, err := ReadSlipPlane(writeFile(t, "plane.txt", planeFile))
	if err != nil {
		t.Fatalf("ReadSlipPlane: %v", err)
	}

	ext := sp.Extremities()
	if math.Abs(ext[0].X+1e-6) > 1e-12 || math.Abs(ext[1].X-1e-6) > 1e-12 {
		t.Errorf("extremities = %v", ext)
	}
	if sp.Normal().Y != 1 {
		t.Errorf("normal = %v", sp.Normal())
	}

	dis := sp.Dislocations()
	if len(dis) != 2 {
		t.Fatalf("got %d dislocations, want 2", len(dis))
	}
	// Insertion sorts by line coordinate, so the -3e-7 dislocation is first.
	if math.Abs(dis[0].Position().X+3e-7) > 1e-12 {
		t.Errorf("first dislocation at %v, want x=-3e-7", dis[0].Position())
	}
	if dis[0].IsMobile() {
		t.Error("pinned dislocation read as mobile")
	}
	if !dis[1].IsMobile() {
		t.Error("mobile dislocation read as pinned")
	}
	if math.Abs(dis[1].BurgersMagnitude()-5e-9) > 1e-15 {
		t.Errorf("bmag = %v", dis[1].BurgersMagnitude())
	}

	srcs := sp.Sources()
	if len(srcs) != 1 {
		t.Fatalf("got %d sources, want 1", len(srcs))
	}
	if math.Abs(srcs[0].TauCritical()-1.5e6) > 1 {
		t.Errorf("TauCritical = %v", srcs[0].TauCritical())
	}
}

func TestReadSlipPlaneTruncated(t *testing.T) {
	content := "-1 0 0\n1 0 0\n0 1 0\n0 0 0\n3\n0.1 0 0 1 1 0 1 -1 0 5e-9 1\n"
	_, err := ReadSlipPlane(writeFile(t, "short.txt", content))
	if !errors.Is(err, ErrTruncatedFile) {
		t.Errorf("err = %v, want ErrTruncatedFile", err)
	}
}

func TestReadSlipPlaneBadField(t *testing.T) {
	content := "-1 0 0\n1 0 0\n0 1 0\n0 0 0\n1\n0.1 0 0 1 1 0 1 -1 0 oops 1\n0\n"
	_, err := ReadSlipPlane(writeFile(t, "bad.txt", content))
	if !errors.Is(err, ErrBadRecord) {
		t.Errorf("err = %v, want ErrBadRecord", err)
	}
}

func TestReadOrientations(t *testing.T) {
	content := "# orientations\n2\n0 0 1\n0.5 0.5 0.7071\n"
	got, err := ReadOrientations(writeFile(t, "orient.txt", content))
	if err != nil {
		t.Fatalf("ReadOrientations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d orientations, want 2", len(got))
	}
	if got[0].Z != 1 {
		t.Errorf("first orientation = %v", got[0])
	}
	if math.Abs(got[1].X-0.5) > 1e-12 {
		t.Errorf("second orientation = %v", got[1])
	}
}

func TestReadTessellation(t *testing.T) {
	content := `# tessellation
2
3
0 0 0
1 0 0
0 1 0
4
1 1 0
2 1 0
2 2 0
1 2 0
`
	polys, err := ReadTessellation(writeFile(t, "tess.txt", content))
	if err != nil {
		t.Fatalf("ReadTessellation: %v", err)
	}
	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}
	if len(polys[0]) != 3 || len(polys[1]) != 4 {
		t.Errorf("vertex counts = %d, %d; want 3, 4", len(polys[0]), len(polys[1]))
	}
	if polys[1][2].X != 2 || polys[1][2].Y != 2 {
		t.Errorf("vertex = %v", polys[1][2])
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := ReadSlipPlane(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
