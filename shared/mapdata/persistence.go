package mapdata

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mhus/nimbus-world-sub010/shared/util"
)

// ChunkModel representa o esquema do banco para um chunk.
type ChunkModel struct {
	ID        string `gorm:"primaryKey"` // Coordenada formatada "X_Z"
	X, Z      int32  `gorm:"index:idx_pos"`
	Data      []byte // Blocos do chunk serializados em GOB
	MTime     int64
	UpdatedAt time.Time
}

// MeshCacheModel guarda um resultado de meshing serializado, para que o
// visor reabra o mundo sem reprocessar a geometria de cada chunk.
type MeshCacheModel struct {
	ID        string `gorm:"primaryKey"` // Coordenada formatada "X_Z"
	MTime     int64
	Data      []byte
	UpdatedAt time.Time
}

// WorldMetadata armazena informações globais do mundo no banco.
type WorldMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// OpenInitialize abre (ou cria) o banco SQLite do mundo e roda migrações.
func (s *MapDataStore) OpenInitialize(worldName string) error {
	if err := os.MkdirAll("saves", 0755); err != nil {
		return err
	}

	dbPath := filepath.Join("saves", fmt.Sprintf("%s.nw", worldName))

	// Logger silencioso: erros de IO aparecem nos retornos, não no stdout.
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&ChunkModel{}, &MeshCacheModel{}, &WorldMetadata{}); err != nil {
		return fmt.Errorf("falha na migração do banco: %w", err)
	}

	s.DB = db

	db.Save(&WorldMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})
	db.Save(&WorldMetadata{Key: "WorldName", Value: worldName})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", dbPath)
	return nil
}

func chunkID(coord util.ChunkCoord) string {
	return fmt.Sprintf("%d_%d", coord.X, coord.Z)
}

// SaveChunk salva um único chunk no banco.
func (s *MapDataStore) SaveChunk(chunk *Chunk) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(chunk.Blocks); err != nil {
		return fmt.Errorf("falha ao serializar chunk %s: %w", chunk.Coord, err)
	}

	model := ChunkModel{
		ID:    chunkID(chunk.Coord),
		X:     chunk.Coord.X,
		Z:     chunk.Coord.Z,
		Data:  buf.Bytes(),
		MTime: chunk.MTime,
	}

	// Upsert: cria ou atualiza.
	if err := s.DB.Save(&model).Error; err != nil {
		log.Printf("[Persistence] ERRO ao salvar chunk %s: %v", model.ID, err)
		return err
	}
	chunk.IsDirty = false
	return nil
}

// LoadChunk tenta carregar um chunk do banco.
func (s *MapDataStore) LoadChunk(coord util.ChunkCoord) (*Chunk, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	var model ChunkModel
	if err := s.DB.First(&model, "id = ?", chunkID(coord)).Error; err != nil {
		return nil, err
	}

	var blocks []*Block
	dec := gob.NewDecoder(bytes.NewReader(model.Data))
	if err := dec.Decode(&blocks); err != nil {
		return nil, fmt.Errorf("falha ao desserializar chunk %s: %w", coord, err)
	}

	return &Chunk{Coord: coord, Blocks: blocks, MTime: model.MTime}, nil
}

// SaveMeshCache grava um resultado de meshing serializado para o chunk.
func (s *MapDataStore) SaveMeshCache(coord util.ChunkCoord, mtime int64, data []byte) error {
	if s.DB == nil {
		return nil // Cache em disco é opcional
	}
	model := MeshCacheModel{ID: chunkID(coord), MTime: mtime, Data: data}
	return s.DB.Save(&model).Error
}

// LoadMeshCache retorna o resultado de meshing salvo, se a versão bater.
func (s *MapDataStore) LoadMeshCache(coord util.ChunkCoord, mtime int64) ([]byte, bool) {
	if s.DB == nil {
		return nil, false
	}
	var model MeshCacheModel
	if err := s.DB.First(&model, "id = ?", chunkID(coord)).Error; err != nil {
		return nil, false
	}
	if model.MTime != mtime {
		return nil, false
	}
	return model.Data, true
}

// Save persiste todos os chunks sujos em memória.
func (s *MapDataStore) Save(worldName string) error {
	s.Mu.Lock()
	if s.DB == nil {
		if err := s.OpenInitialize(worldName); err != nil {
			s.Mu.Unlock()
			return err
		}
	}

	// Coleta os chunks sujos para salvar fora do lock.
	var dirty []*Chunk
	for _, chunk := range s.Chunks {
		if chunk.IsDirty {
			dirty = append(dirty, chunk)
		}
	}
	s.Mu.Unlock()

	if len(dirty) == 0 {
		return nil
	}

	count := 0
	for _, chunk := range dirty {
		if err := s.SaveChunk(chunk); err == nil {
			count++
		}
	}
	log.Printf("[Persistence] Salvamento concluído: %d chunks persistidos.", count)
	return nil
}

// Load abre o banco do mundo e traz todos os chunks salvos para a
// memória. Chunks carregados chegam limpos (IsDirty=false).
func (s *MapDataStore) Load(worldName string) error {
	if s.DB == nil {
		if err := s.OpenInitialize(worldName); err != nil {
			return err
		}
	}

	var models []ChunkModel
	if err := s.DB.Find(&models).Error; err != nil {
		return fmt.Errorf("falha ao listar chunks salvos: %w", err)
	}

	loaded := 0
	s.Mu.Lock()
	for _, model := range models {
		var blocks []*Block
		dec := gob.NewDecoder(bytes.NewReader(model.Data))
		if err := dec.Decode(&blocks); err != nil {
			log.Printf("[Persistence] Chunk %s ilegível, pulado: %v", model.ID, err)
			continue
		}
		coord := util.ChunkCoord{X: model.X, Z: model.Z}
		s.Chunks[coord] = &Chunk{Coord: coord, Blocks: blocks, MTime: model.MTime}
		loaded++
	}
	s.Mu.Unlock()

	log.Printf("[Persistence] %d chunks carregados do banco.", loaded)
	return nil
}
