package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/wbvh/asset"
	"github.com/achilleasa/wbvh/types"
)

func readString(t *testing.T, payload string) (*wavefrontSceneReader, error) {
	t.Helper()
	r := newWavefrontReader()
	res := asset.NewResourceFromStream("test.obj", strings.NewReader(payload))
	_, err := r.Read(res)
	return r, err
}

func TestParseGeometry(t *testing.T) {
	payload := `
# a quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
mtllib materials.mtl

o quad
usemtl white
f 1/1/1 2/1/1 3/1/1 4/1/1

g tri
s off
f -4//1 -3//1 -1//1

o empty
`
	r, err := readString(t, payload)
	if err != nil {
		t.Fatal(err)
	}

	meshes := r.rawScene.Meshes
	if len(meshes) != 2 {
		t.Fatalf("expected empty mesh to be dropped; got %d meshes", len(meshes))
	}
	if meshes[0].Name != "quad" || meshes[1].Name != "tri" {
		t.Fatalf("unexpected mesh names %q, %q", meshes[0].Name, meshes[1].Name)
	}

	// Quads are split into a triangle fan
	if len(meshes[0].Primitives) != 2 {
		t.Fatalf("expected quad to be split into 2 triangles; got %d", len(meshes[0].Primitives))
	}
	expFan := [][3]types.Vec3{
		{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(1, 1, 0)},
		{types.XYZ(0, 0, 0), types.XYZ(1, 1, 0), types.XYZ(0, 1, 0)},
	}
	for index, prim := range meshes[0].Primitives {
		if prim.Vertices != expFan[index] {
			t.Errorf("[prim %d] expected vertices %v; got %v", index, expFan[index], prim.Vertices)
		}
	}

	tri := meshes[1].Primitives[0]
	expTri := [3]types.Vec3{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)}
	if tri.Vertices != expTri {
		t.Errorf("expected negative indices to select %v; got %v", expTri, tri.Vertices)
	}

	expBounds := types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 0))
	if meshes[0].Bounds() != expBounds {
		t.Errorf("expected quad bounds %v; got %v", expBounds, meshes[0].Bounds())
	}

	for _, keyword := range []string{"vn", "vt", "mtllib", "usemtl", "s"} {
		if r.skipped[keyword] != 1 {
			t.Errorf(`expected "%s" to be skipped once; got %d`, keyword, r.skipped[keyword])
		}
	}
}

func TestDefaultMesh(t *testing.T) {
	r, err := readString(t, "v 0 0 0\nv 1 0 0\nv 0 0 1\nf 1 2 3\n")
	if err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 1 || r.rawScene.Meshes[0].Name != "default" {
		t.Fatalf("expected faces without an object to be added to a default mesh")
	}
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		payload string
		expErr  string
	}{
		{"v 1 2", `[test.obj: 1] error: unsupported syntax for "v"; expected 3 arguments; got 2`},
		{"v 1 foo 2", `[test.obj: 1] error: strconv.ParseFloat: parsing "foo": invalid syntax`},
		{"v 1 NaN 2", `[test.obj: 1] error: "v" defines a non-finite coordinate`},
		{"v 0 0 0\nf 1 1", `[test.obj: 2] error: unsupported syntax for "f"; expected at least 3 arguments; got 2`},
		{"v 0 0 0\nf 1 1 2", `[test.obj: 2] error: could not parse vertex coord for face argument 2: index out of bounds`},
		{"v 0 0 0\nf 1 /2 1", `[test.obj: 2] error: face argument 1 does not include a vertex index`},
		{"v 0 0 0\nf 1 -2 1", `[test.obj: 2] error: could not parse vertex coord for face argument 1: index out of bounds`},
		{"o", `[test.obj: 1] error: unsupported syntax for "o"; expected 1 argument for object name; got 0`},
		{"call", `[test.obj: 1] error: unsupported syntax for "call"; expected 1 argument; got 0`},
	}

	for index, spec := range specs {
		_, err := readString(t, spec.payload)
		if err == nil {
			t.Errorf("[spec %d] expected an error", index)
			continue
		}
		if err.Error() != spec.expErr {
			t.Errorf("[spec %d] expected error:\n%s\ngot:\n%s", index, spec.expErr, err.Error())
		}
	}
}

func TestCallRelativeIndices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.obj", "v 9 9 9\ncall part.obj\n")
	writeFile(t, dir, "part.obj", "o part\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	sc, err := ReadScene(filepath.Join(dir, "main.obj"))
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Meshes) != 1 || len(sc.Meshes[0].Primitives) != 1 {
		t.Fatalf("expected a single mesh with one primitive")
	}

	// Positive indices are relative to the included file
	exp := [3]types.Vec3{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)}
	if got := sc.Meshes[0].Primitives[0].Vertices; got != exp {
		t.Errorf("expected vertices %v; got %v", exp, got)
	}
}

func TestCallErrorStack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.obj", "# main\ncall part.obj\n")
	writeFile(t, dir, "part.obj", "v 1 2\n")

	_, err := ReadScene(filepath.Join(dir, "main.obj"))
	if err == nil {
		t.Fatal("expected an error")
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected error to include the include stack; got:\n%s", err.Error())
	}
	if !strings.HasSuffix(lines[0], `part.obj: 1] error: unsupported syntax for "v"; expected 3 arguments; got 2`) {
		t.Errorf("unexpected error line: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "referenced from ") || !strings.HasSuffix(lines[1], "main.obj:2 [call]") {
		t.Errorf("unexpected stack line: %s", lines[1])
	}
}

func TestReadSceneUnsupportedFormat(t *testing.T) {
	_, err := ReadScene("scene.zip")
	if err == nil || err.Error() != "readScene: unsupported file format" {
		t.Fatalf("expected unsupported format error; got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, payload string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}
}
