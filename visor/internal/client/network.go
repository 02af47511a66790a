package client

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mhus/nimbus-world-sub010/shared/blockdef"
	"github.com/mhus/nimbus-world-sub010/shared/mapdata"
	"github.com/mhus/nimbus-world-sub010/shared/proto/nimnet"
	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// ProtocolVersion é a versão do protocolo nimnet falada por este visor.
const ProtocolVersion = 1

// Marshaler é qualquer mensagem nimnet serializável.
type Marshaler interface {
	Marshal() []byte
}

// NetworkClient lida com a comunicação com o servidor de mundo.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	world     string
	store     *mapdata.MapDataStore
	connected bool
	mu        sync.RWMutex

	// Callbacks para o App
	OnChunk      func(coord util.ChunkCoord)
	OnBlockTypes func(count int)
}

func NewNetworkClient(url, world string, store *mapdata.MapDataStore) *NetworkClient {
	return &NetworkClient{
		url:   url,
		world: world,
		store: store,
	}
}

func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, c.url)
		c.conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", maxRetries, err)
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	c.Send(nimnet.TypeHello, &nimnet.HelloMessage{
		WorldName:       c.world,
		ProtocolVersion: ProtocolVersion,
	})

	go c.readLoop()
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *NetworkClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *NetworkClient) Send(msgType int32, msg Marshaler) {
	if !c.IsConnected() {
		return
	}

	var payload []byte
	if msg != nil {
		payload = msg.Marshal()
	}

	env := &nimnet.Envelope{
		Type:    msgType,
		Payload: payload,
	}

	c.mu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, env.Marshal())
	c.mu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}
}

func (c *NetworkClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			break
		}

		var env nimnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *nimnet.Envelope) {
	switch env.Type {
	case nimnet.TypeBlockTypes:
		var msg nimnet.BlockTypesMessage
		if err := msg.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Erro ao desempacotar tipos de bloco: %v", err)
			return
		}
		c.processBlockTypes(&msg)
	case nimnet.TypeChunkBlocks:
		var msg nimnet.ChunkBlocksMessage
		if err := msg.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Erro ao desempacotar chunk: %v", err)
			return
		}
		log.Printf("[Network] Chunk recebido: (%d, %d) com %d blocos", msg.ChunkX, msg.ChunkZ, len(msg.Blocks))
		c.processChunk(&msg)
	case nimnet.TypeChunkUnload:
		var msg nimnet.ChunkUnloadMessage
		if err := msg.Unmarshal(env.Payload); err != nil {
			return
		}
		coord := util.ChunkCoord{X: msg.ChunkX, Z: msg.ChunkZ}
		c.store.RemoveChunk(coord)
		if c.OnChunk != nil {
			c.OnChunk(coord)
		}
	}
}

func (c *NetworkClient) processBlockTypes(msg *nimnet.BlockTypesMessage) {
	count := 0
	for _, e := range msg.Entries {
		mod := &blockdef.Modifier{Name: e.Name}
		if len(e.Modifier) > 0 {
			if err := json.Unmarshal(e.Modifier, mod); err != nil {
				log.Printf("[Network] Modificador inválido para tipo %d (%s): %v", e.ID, e.Name, err)
				continue
			}
			if mod.Name == "" {
				mod.Name = e.Name
			}
		}
		c.store.Registry.Register(e.ID, mod)
		count++
	}
	log.Printf("[Network] Recebidos %d tipos de bloco do servidor", count)
	if c.OnBlockTypes != nil {
		c.OnBlockTypes(count)
	}
}

func (c *NetworkClient) processChunk(msg *nimnet.ChunkBlocksMessage) {
	coord := util.ChunkCoord{X: msg.ChunkX, Z: msg.ChunkZ}

	// Mensagem sem blocos é um chunk de "Ar" (vazio): remove em vez de
	// guardar lixo.
	if len(msg.Blocks) == 0 {
		c.store.RemoveChunk(coord)
		if c.OnChunk != nil {
			c.OnChunk(coord)
		}
		return
	}

	blocks := make([]*mapdata.Block, 0, len(msg.Blocks))
	for i := range msg.Blocks {
		blocks = append(blocks, detailToBlock(&msg.Blocks[i]))
	}
	c.store.SetChunkBlocks(coord, blocks)

	if c.OnChunk != nil {
		c.OnChunk(coord)
	}
}

func detailToBlock(d *nimnet.BlockDetail) *mapdata.Block {
	b := &mapdata.Block{
		Position: util.NewBlockCoord(d.X, d.Y, d.Z),
		Type:     d.Type,
		Faces:    uint8(d.Faces),
		Level:    d.Level,
	}
	if d.Transform != nil {
		b.RotX = d.Transform.RotX
		b.RotY = d.Transform.RotY
		b.Scale = d.Transform.Scale
		if len(d.Transform.Offsets) > 0 {
			b.Offsets = append([]float32(nil), d.Transform.Offsets...)
		}
	}
	return b
}
