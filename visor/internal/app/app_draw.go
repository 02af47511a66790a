package app

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	if a.Loading {
		a.drawLoadingScreen()
	} else {
		a.drawScene()
		a.drawHUD()

		if a.State == StatePaused {
			a.drawPauseMenu()
		}
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.WireframeMode {
		rl.DrawGrid(40, 1.0)
	}

	if a.renderer != nil {
		a.renderer.Draw(a.Cam.RLCamera)

		if a.SelectedCoord != nil {
			a.renderer.DrawSelection(*a.SelectedCoord)
		}
	}

	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(320)
	height := int32(170)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	syncStatus := "Offline"
	syncColor := rl.Red
	if a.netClient != nil && a.netClient.IsConnected() {
		syncStatus = "Conectado"
		syncColor = rl.Green
	}
	rl.DrawText(syncStatus, x+width-110, y+10, 20, syncColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("LOCALIZAÇÃO", x+10, y+45, 12, rl.Gray)

	focus := util.WorldToBlockCoord(a.Cam.CurrentLookAt)
	chunk := util.ChunkOf(focus)
	rl.DrawText(fmt.Sprintf("Bloco: %s  Chunk: %s", focus, chunk), x+10, y+60, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Chunks carregados: %d", len(a.mapStore.LoadedCoords())), x+10, y+80, 14, rl.LightGray)

	rl.DrawLine(x+10, y+100, x+width-10, y+100, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("CONTROLES", x+10, y+110, 12, rl.Gray)
	rl.DrawText("Scroll: Zoom | WASD: Mover | P: Projeção", x+10, y+125, 14, rl.LightGray)
	rl.DrawText("F3: HUD | F4: Grade | F11: Tela Cheia", x+10, y+145, 14, rl.SkyBlue)

	a.drawSelectedBlockInfo()
}

// drawSelectedBlockInfo mostra o painel de inspeção do bloco clicado.
func (a *App) drawSelectedBlockInfo() {
	if a.SelectedCoord == nil {
		return
	}

	coord := *a.SelectedCoord
	chunk := a.mapStore.GetChunk(util.ChunkOf(coord))
	if chunk == nil {
		return
	}

	var block *mapdata.Block
	for _, b := range chunk.Blocks {
		if b.Position.Equals(coord) {
			block = b
			break
		}
	}
	if block == nil {
		return
	}

	name := ""
	if mod := a.mapStore.Modifier(block); mod != nil {
		name = mod.Name
	}

	width := int32(280)
	height := int32(130)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(190)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 200))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(255, 215, 0, 255))

	rl.DrawText("INSPEÇÃO DE BLOCO", x+15, y+12, 18, rl.Gold)
	rl.DrawLine(x+15, y+36, x+width-15, y+36, rl.NewColor(100, 100, 100, 255))

	rl.DrawText(fmt.Sprintf("Coord: %s", coord), x+15, y+45, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Tipo: %d (%s)", block.Type, name), x+15, y+65, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Faces: %06b", block.Faces), x+15, y+85, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Nível: %.2f", block.EffectiveLevel()), x+15, y+105, 14, rl.LightGray)
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(240)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "PAUSADO"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	buttonX := panelX + 50
	buttonWidth := panelWidth - 100
	buttonHeight := int32(40)

	if a.drawButton(buttonX, panelY+90, buttonWidth, buttonHeight, "RETOMAR (ESC)", rl.Green) {
		a.State = StateViewing
	}

	if a.drawButton(buttonX, panelY+150, buttonWidth, buttonHeight, "SAIR", rl.Red) {
		log.Println("[App] Encerrando pelo menu.")
		a.shutdown()
		rl.CloseWindow()
	}
}

// drawButton desenha um botão com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R += 30
		drawColor.G += 30
		drawColor.B += 30
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	} else {
		rl.SetMouseCursor(rl.MouseCursorDefault)
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}

func (a *App) drawLoadingScreen() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(20, 20, 25, 255))

	title := "NIMBUS VISOR"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-60, 40, rl.Gold)

	statusWidth := rl.MeasureText(a.LoadingStatus, 18)
	rl.DrawText(a.LoadingStatus, (screenWidth-statusWidth)/2, screenHeight/2+20, 18, rl.LightGray)

	tip := "Pressione ESPAÇO para entrar imediatamente."
	tipWidth := rl.MeasureText(tip, 16)
	rl.DrawText(tip, (screenWidth-tipWidth)/2, screenHeight-50, 16, rl.Gray)
}
