package meshing

import (
	"fmt"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
)

// modelGenerator materializa blocos que renderizam um modelo externo.
// O template é carregado uma única vez por caminho e registrado no
// tracker no ato; as instâncias só referenciam o caminho.
type modelGenerator struct{}

func (modelGenerator) Exclusive() bool { return true }

func (modelGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility
	tex := vis.TextureForFace(blockdef.FaceFront)
	if tex == nil || tex.Path == "" {
		return nil
	}

	if ctx.Assets != nil {
		_, err := ctx.Tracker.GetOrCreate("model|"+tex.Path, func() (Disposable, error) {
			return ctx.Assets.Load(tex.Path)
		})
		if err != nil {
			return fmt.Errorf("falha ao carregar modelo %s em %s: %w", tex.Path, blk.Position, err)
		}
	}

	scale := blk.EffectiveScale()
	color := whiteColor
	if tex.Color != nil {
		color = *tex.Color
	}
	ctx.AddInstance(ModelInstance{
		ModelPath: tex.Path,
		Position:  instancePosition(blk),
		Scale:     scale[0],
		Rotation:  blk.RotY,
		Color:     color,
	})
	return nil
}

// spriteGenerator materializa billboards que sempre encaram a câmera.
// Não há geometria no lote; o renderer desenha a instância por frame.
type spriteGenerator struct{}

func (spriteGenerator) Exclusive() bool { return true }

func (spriteGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	vis := mod.Visibility
	tex := vis.TextureForFace(blockdef.FaceFront)
	if tex == nil || tex.Path == "" {
		return nil
	}

	scale := blk.EffectiveScale()
	color := whiteColor
	if tex.Color != nil {
		color = *tex.Color
	}
	ctx.AddInstance(ModelInstance{
		ModelPath: tex.Path,
		Billboard: true,
		Position:  instancePosition(blk),
		Scale:     scale[0],
		Rotation:  blk.RotY,
		Color:     color,
	})
	return nil
}

// surfaceGenerator cria a superfície animada compartilhada do
// chunk+elevação (água, lava). Muitos blocos na mesma altura disparam a
// mesma factory e recebem o mesmo recurso via dedupe por nome.
type surfaceGenerator struct{}

func (surfaceGenerator) Exclusive() bool { return true }

func (surfaceGenerator) Generate(ctx *Context, blk *mapdata.Block, mod *blockdef.Modifier) error {
	if !hasGeometry(mod) {
		return nil
	}
	if ctx.Surfaces == nil {
		return nil
	}
	vis := mod.Visibility
	tex := vis.TextureForFace(blockdef.FaceTop)
	key := MaterialKey(vis, tex)
	y := blk.Position.Y

	name := fmt.Sprintf("surface|%s|%d|%s", ctx.Coord, y, key)
	_, err := ctx.Tracker.GetOrCreate(name, func() (Disposable, error) {
		d, err := ctx.Surfaces.Create(ctx.Coord, y, key)
		if err != nil {
			return nil, err
		}
		// A declaração acompanha o resultado para que a subida (ou um
		// resultado vindo do cache) recrie a superfície em nome do chunk.
		ctx.AddSurface(SurfaceDef{Y: y, Key: key})
		return d, nil
	})
	if err != nil {
		return fmt.Errorf("falha ao criar superfície do chunk %s altura %d: %w", ctx.Coord, y, err)
	}
	return nil
}

func instancePosition(blk *mapdata.Block) [3]float32 {
	c := blockCenter(blk)
	return [3]float32{c.X(), c.Y(), c.Z()}
}
