package meshing

import (
	"testing"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

func newTestContext() (*Context, map[string]*MeshBuffer, *Result) {
	buffers := make(map[string]*MeshBuffer)
	res := &Result{}
	ctx := &Context{
		Emitter: &FaceEmitter{},
		Coord:   util.ChunkCoord{X: 0, Z: 0},
		Tracker: NewResourceTracker(),
		getBuffer: func(key string) *MeshBuffer {
			if b, ok := buffers[key]; ok {
				return b
			}
			b := &MeshBuffer{}
			buffers[key] = b
			return b
		},
		addInstance: func(inst ModelInstance) {
			res.Instances = append(res.Instances, inst)
		},
		addSurface: func(def SurfaceDef) {
			res.Surfaces = append(res.Surfaces, def)
		},
	}
	return ctx, buffers, res
}

func shapeModifier(shape string) *blockdef.Modifier {
	return &blockdef.Modifier{
		Name: "teste",
		Visibility: &blockdef.Visibility{
			Shape: shape,
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/pedra.png"},
			},
		},
	}
}

func shapeBlock(x, y, z int32) *mapdata.Block {
	return &mapdata.Block{
		Position: util.NewBlockCoord(x, y, z),
		Faces:    blockdef.FaceMaskAll,
	}
}

func totalGeometry(buffers map[string]*MeshBuffer) (verts, indices int) {
	for _, b := range buffers {
		verts += b.Geometry.VertexCount()
		indices += len(b.Geometry.Indices)
	}
	return
}

func TestCubeCounts(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(10, 20, 30)

	if err := (cubeGenerator{}).Generate(ctx, blk, shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	verts, indices := totalGeometry(buffers)
	if verts != 24 || indices != 36 {
		t.Errorf("cube = %d verts, %d indices, want 24, 36", verts, indices)
	}
}

func TestCubeBounds(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(10, 20, 30)

	if err := (cubeGenerator{}).Generate(ctx, blk, shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	for _, buf := range buffers {
		v := buf.Geometry.Vertices
		for i := 0; i < len(v); i += 3 {
			if v[i] < 10 || v[i] > 11 || v[i+1] < 20 || v[i+1] > 21 || v[i+2] < 30 || v[i+2] > 31 {
				t.Fatalf("vertex (%f, %f, %f) outside block cell", v[i], v[i+1], v[i+2])
			}
		}
	}
}

func TestCubeFaceMask(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(0, 0, 0)
	blk.Faces = blockdef.FaceTop.Bit() | blockdef.FaceBottom.Bit()

	if err := (cubeGenerator{}).Generate(ctx, blk, shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	verts, indices := totalGeometry(buffers)
	if verts != 8 || indices != 12 {
		t.Errorf("masked cube = %d verts, %d indices, want 8, 12", verts, indices)
	}
}

func TestCubeSkipsWithoutVisibility(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	mod := &blockdef.Modifier{Name: "invisivel"}

	if err := (cubeGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), mod); err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 0 {
		t.Error("block without visibility must emit nothing")
	}
}

func TestCubeSkipsWithoutTextures(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	mod := &blockdef.Modifier{
		Name:       "sem-textura",
		Visibility: &blockdef.Visibility{Shape: "cube"},
	}

	if err := (cubeGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), mod); err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 0 {
		t.Error("block without textures must emit nothing")
	}
}

func TestCubePerFaceTextureSlots(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	mod := &blockdef.Modifier{
		Name: "grama",
		Visibility: &blockdef.Visibility{
			Shape: "cube",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotTop:  {Path: "blocks/grama_topo.png", Effect: "water"},
				blockdef.SlotSide: {Path: "blocks/grama_lado.png", Effect: "water"},
				blockdef.SlotAll:  {Path: "blocks/terra.png", Effect: "water"},
			},
		},
	}

	if err := (cubeGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), mod); err != nil {
		t.Fatal(err)
	}

	// Efeito fora do atlas separa os lotes por textura: topo, lados e
	// fundo resolvem caminhos distintos, então três chaves.
	if len(buffers) != 3 {
		t.Errorf("buffers = %d, want 3 (top, side, bottom)", len(buffers))
	}
}

func TestPointsMatchesCubeWithZeroOffsets(t *testing.T) {
	cubeCtx, cubeBuffers, _ := newTestContext()
	if err := (cubeGenerator{}).Generate(cubeCtx, shapeBlock(5, 6, 7), shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	ptsCtx, ptsBuffers, _ := newTestContext()
	if err := (pointsGenerator{}).Generate(ptsCtx, shapeBlock(5, 6, 7), shapeModifier("points")); err != nil {
		t.Fatal(err)
	}

	for key, cubeBuf := range cubeBuffers {
		ptsBuf, ok := ptsBuffers[key]
		if !ok {
			t.Fatalf("points missing material key %q", key)
		}
		if len(cubeBuf.Geometry.Vertices) != len(ptsBuf.Geometry.Vertices) {
			t.Fatal("points with zero offsets must match the cube vertex count")
		}
		for i := range cubeBuf.Geometry.Vertices {
			if cubeBuf.Geometry.Vertices[i] != ptsBuf.Geometry.Vertices[i] {
				t.Fatalf("vertex %d differs: cube %f, points %f", i, cubeBuf.Geometry.Vertices[i], ptsBuf.Geometry.Vertices[i])
			}
		}
	}
}

// Mover um único canto do cubo de oito cantos só mexe nos vértices das
// faces que referenciam esse canto; o resto da caixa fica onde estava.
func TestCubeSingleCornerOffsetIsLocal(t *testing.T) {
	plainCtx, plainBuffers, _ := newTestContext()
	if err := (cubeGenerator{}).Generate(plainCtx, shapeBlock(10, 20, 30), shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	offCtx, offBuffers, _ := newTestContext()
	blk := shapeBlock(10, 20, 30)
	// Só o canto 0 (base do bloco) recebe delta.
	blk.Offsets = []float32{0.25, 0.25, 0.25}
	if err := (cubeGenerator{}).Generate(offCtx, blk, shapeModifier("cube")); err != nil {
		t.Fatal(err)
	}

	for key, plain := range plainBuffers {
		off, ok := offBuffers[key]
		if !ok {
			t.Fatalf("offset cube missing material key %q", key)
		}
		pv, ov := plain.Geometry.Vertices, off.Geometry.Vertices
		if len(pv) != len(ov) {
			t.Fatalf("vertex counts differ: %d vs %d", len(pv), len(ov))
		}
		moved := 0
		for i := 0; i < len(pv); i += 3 {
			if pv[i] == ov[i] && pv[i+1] == ov[i+1] && pv[i+2] == ov[i+2] {
				continue
			}
			moved++
			if ov[i] != 10.25 || ov[i+1] != 20.25 || ov[i+2] != 30.25 {
				t.Errorf("moved vertex = (%f, %f, %f), want (10.25, 20.25, 30.25)", ov[i], ov[i+1], ov[i+2])
			}
		}
		// O canto 0 participa de três faces: fundo, esquerda e frente.
		if moved != 3 {
			t.Errorf("moved vertices = %d, want 3", moved)
		}
	}
}

func TestPointsOffsetKeepsFacePlanar(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(10, 20, 30)
	// Primeiro canto da face superior: o delta Y deve ser ignorado
	// porque o eixo da normal é preso.
	blk.Offsets = []float32{0.3, 0.9, 0.2}

	if err := (pointsGenerator{}).Generate(ctx, blk, shapeModifier("points")); err != nil {
		t.Fatal(err)
	}

	for _, buf := range buffers {
		v := buf.Geometry.Vertices
		if v[0] != 10.3 || v[1] != 21 || v[2] != 31.2 {
			t.Errorf("first top corner = (%f, %f, %f), want (10.3, 21, 31.2)", v[0], v[1], v[2])
		}
		// Os quatro vértices da face superior continuam coplanares.
		for i := 0; i < 4; i++ {
			if v[i*3+1] != 21 {
				t.Errorf("top face vertex %d has Y = %f, want 21", i, v[i*3+1])
			}
		}
	}
}

func TestStepsCounts(t *testing.T) {
	ctx, buffers, _ := newTestContext()

	if err := (stepsGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), shapeModifier("steps")); err != nil {
		t.Fatal(err)
	}

	// Caixa inferior completa (6 faces) mais a superior sem o fundo (5).
	verts, indices := totalGeometry(buffers)
	if verts != 44 || indices != 66 {
		t.Errorf("steps = %d verts, %d indices, want 44, 66", verts, indices)
	}
}

func TestCrossCounts(t *testing.T) {
	ctx, buffers, _ := newTestContext()

	if err := (crossGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), shapeModifier("cross")); err != nil {
		t.Fatal(err)
	}

	// Duas placas diagonais, cada uma dupla-face.
	verts, indices := totalGeometry(buffers)
	if verts != 16 || indices != 24 {
		t.Errorf("cross = %d verts, %d indices, want 16, 24", verts, indices)
	}
}

func TestFoliageDeterministic(t *testing.T) {
	run := func() []float32 {
		ctx, buffers, _ := newTestContext()
		if err := (foliageGenerator{}).Generate(ctx, shapeBlock(3, 9, -4), shapeModifier("foliage")); err != nil {
			t.Fatal(err)
		}
		for _, buf := range buffers {
			return buf.Geometry.Vertices
		}
		return nil
	}

	a, b := run(), run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("foliage runs differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("foliage vertex %d differs between runs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestFoliageVariesWithPosition(t *testing.T) {
	run := func(x int32) []float32 {
		ctx, buffers, _ := newTestContext()
		if err := (foliageGenerator{}).Generate(ctx, shapeBlock(x, 0, 0), shapeModifier("foliage")); err != nil {
			t.Fatal(err)
		}
		for _, buf := range buffers {
			return buf.Geometry.Vertices
		}
		return nil
	}

	a, b := run(1), run(2)
	same := len(a) == len(b)
	if same {
		// Compara a forma relativa (descontando a translação de 1 em X).
		for i := 0; i < len(a); i += 3 {
			if a[i]+1 != b[i] || a[i+1] != b[i+1] || a[i+2] != b[i+2] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("foliage at different coordinates produced identical plates")
	}
}

func TestCurvedCounts(t *testing.T) {
	ctx, buffers, _ := newTestContext()

	if err := (curvedGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), shapeModifier("curved")); err != nil {
		t.Fatal(err)
	}

	// 12 fatias: 12 quads laterais e 12 triângulos por tampa.
	verts, indices := totalGeometry(buffers)
	wantVerts := curvedSegments*4 + 2*curvedSegments*3
	wantIndices := curvedSegments*6 + 2*curvedSegments*3
	if verts != wantVerts || indices != wantIndices {
		t.Errorf("curved = %d verts, %d indices, want %d, %d", verts, indices, wantVerts, wantIndices)
	}
}

func TestCurvedRadiusOffsets(t *testing.T) {
	ctx, buffers, _ := newTestContext()
	blk := shapeBlock(0, 0, 0)
	// Raio superior zerado vira um cone: sem tampa de cima.
	blk.Offsets = []float32{0, -0.5}

	if err := (curvedGenerator{}).Generate(ctx, blk, shapeModifier("curved")); err != nil {
		t.Fatal(err)
	}

	verts, _ := totalGeometry(buffers)
	wantVerts := curvedSegments*4 + curvedSegments*3
	if verts != wantVerts {
		t.Errorf("cone = %d verts, want %d (no top cap)", verts, wantVerts)
	}
}

func TestModelGeneratorEmitsInstance(t *testing.T) {
	ctx, buffers, res := newTestContext()
	mod := &blockdef.Modifier{
		Name: "estatua",
		Visibility: &blockdef.Visibility{
			Shape: "model",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "models/estatua.glb"},
			},
		},
	}
	blk := shapeBlock(2, 0, 2)
	blk.RotY = 90

	if err := (modelGenerator{}).Generate(ctx, blk, mod); err != nil {
		t.Fatal(err)
	}

	if len(buffers) != 0 {
		t.Error("model shape must not emit batched geometry")
	}
	if len(res.Instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(res.Instances))
	}
	inst := res.Instances[0]
	if inst.ModelPath != "models/estatua.glb" || inst.Billboard || inst.Rotation != 90 {
		t.Errorf("unexpected instance: %+v", inst)
	}
	if inst.Position != [3]float32{2.5, 0.5, 2.5} {
		t.Errorf("instance position = %v, want block center", inst.Position)
	}
}

func TestSpriteGeneratorEmitsBillboard(t *testing.T) {
	ctx, _, res := newTestContext()
	mod := &blockdef.Modifier{
		Name: "tocha",
		Visibility: &blockdef.Visibility{
			Shape: "sprite",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "sprites/tocha.png"},
			},
		},
	}

	if err := (spriteGenerator{}).Generate(ctx, shapeBlock(0, 0, 0), mod); err != nil {
		t.Fatal(err)
	}

	if len(res.Instances) != 1 || !res.Instances[0].Billboard {
		t.Fatalf("expected one billboard instance, got %+v", res.Instances)
	}
}

type stubSurfaces struct {
	created int
}

func (s *stubSurfaces) Create(chunk util.ChunkCoord, y int32, key string) (Disposable, error) {
	s.created++
	return &countingHandle{}, nil
}

func TestSurfaceGeneratorSharesPerElevation(t *testing.T) {
	ctx, _, res := newTestContext()
	surfaces := &stubSurfaces{}
	ctx.Surfaces = surfaces

	mod := &blockdef.Modifier{
		Name: "agua",
		Visibility: &blockdef.Visibility{
			Shape:        "surface",
			Transparency: "blend",
			Textures: map[string]*blockdef.TextureDef{
				blockdef.SlotAll: {Path: "blocks/agua.png", Effect: "water"},
			},
		},
	}

	gen := surfaceGenerator{}
	for x := int32(0); x < 4; x++ {
		if err := gen.Generate(ctx, shapeBlock(x, 12, 0), mod); err != nil {
			t.Fatal(err)
		}
	}
	if err := gen.Generate(ctx, shapeBlock(0, 13, 0), mod); err != nil {
		t.Fatal(err)
	}

	// Quatro blocos na mesma altura compartilham um recurso; a outra
	// altura ganha o seu próprio.
	if surfaces.created != 2 {
		t.Errorf("surfaces created = %d, want 2", surfaces.created)
	}
	// Cada superfície criada entra uma vez na declaração do resultado.
	if len(res.Surfaces) != 2 {
		t.Fatalf("declared surfaces = %d, want 2", len(res.Surfaces))
	}
	if res.Surfaces[0].Y != 12 || res.Surfaces[1].Y != 13 {
		t.Errorf("declared elevations = %d, %d, want 12, 13", res.Surfaces[0].Y, res.Surfaces[1].Y)
	}
}

func TestGeneratorForUnknownShape(t *testing.T) {
	if _, ok := GeneratorFor("nao-existe").(cubeGenerator); !ok {
		t.Error("unknown shapes must fall back to the cube generator")
	}
	if !GeneratorFor("model").Exclusive() {
		t.Error("model generator must be exclusive")
	}
	if GeneratorFor("cube").Exclusive() {
		t.Error("cube generator must not be exclusive")
	}
}
