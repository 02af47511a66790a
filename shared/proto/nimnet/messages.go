// Package nimnet implementa as mensagens do protocolo do visor sobre o
// wire format do protobuf. As mensagens são escritas à mão: o conjunto
// é pequeno e estável, e isso evita a etapa de geração de código.
package nimnet

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Tipos de mensagem do envelope.
const (
	TypeHello       int32 = 1
	TypeBlockTypes  int32 = 2
	TypeChunkBlocks int32 = 3
	TypeChunkUnload int32 = 4
)

var errTruncated = errors.New("mensagem truncada")

// Envelope embrulha qualquer mensagem do protocolo com seu tipo.
type Envelope struct {
	Type    int32
	Payload []byte
}

func (m *Envelope) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.Type))
	b = appendBytesField(b, 2, m.Payload)
	return b
}

func (m *Envelope) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1:
			v, err := consumeVarint(value)
			if err != nil {
				return err
			}
			m.Type = int32(v)
		case 2:
			m.Payload = append([]byte(nil), value...)
		}
		return nil
	})
}

// HelloMessage abre a sessão e identifica o mundo pedido.
type HelloMessage struct {
	WorldName       string
	ProtocolVersion int32
}

func (m *HelloMessage) Marshal() []byte {
	var b []byte
	b = appendStringField(b, 1, m.WorldName)
	b = appendVarintField(b, 2, uint64(m.ProtocolVersion))
	return b
}

func (m *HelloMessage) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1:
			m.WorldName = string(value)
		case 2:
			v, err := consumeVarint(value)
			if err != nil {
				return err
			}
			m.ProtocolVersion = int32(v)
		}
		return nil
	})
}

// BlockTypeEntry carrega a definição de um tipo de bloco. O modificador
// viaja como JSON: é o mesmo formato do registro em disco.
type BlockTypeEntry struct {
	ID       int32
	Name     string
	Modifier []byte
}

// BlockTypesMessage sincroniza o registro de tipos do servidor.
type BlockTypesMessage struct {
	Entries []BlockTypeEntry
}

func (m *BlockTypesMessage) Marshal() []byte {
	var b []byte
	for _, e := range m.Entries {
		var sub []byte
		sub = appendVarintField(sub, 1, uint64(e.ID))
		sub = appendStringField(sub, 2, e.Name)
		sub = appendBytesField(sub, 3, e.Modifier)
		b = appendBytesField(b, 1, sub)
	}
	return b
}

func (m *BlockTypesMessage) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		if num != 1 {
			return nil
		}
		var e BlockTypeEntry
		err := walkFields(value, func(n protowire.Number, t protowire.Type, v []byte) error {
			switch n {
			case 1:
				id, err := consumeVarint(v)
				if err != nil {
					return err
				}
				e.ID = int32(id)
			case 2:
				e.Name = string(v)
			case 3:
				e.Modifier = append([]byte(nil), v...)
			}
			return nil
		})
		if err != nil {
			return err
		}
		m.Entries = append(m.Entries, e)
		return nil
	})
}

// BlockDetail é um bloco dentro de uma mensagem de chunk.
type BlockTransform struct {
	RotX    float32
	RotY    float32
	Scale   [3]float32
	Offsets []float32
}

type BlockDetail struct {
	X, Y, Z   int32
	Type      int32
	Faces     uint32
	Level     float32
	Transform *BlockTransform
}

func (p *BlockDetail) marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(uint32(p.X)))
	b = appendVarintField(b, 2, uint64(uint32(p.Y)))
	b = appendVarintField(b, 3, uint64(uint32(p.Z)))
	b = appendVarintField(b, 4, uint64(uint32(p.Type)))
	b = appendVarintField(b, 5, uint64(p.Faces))
	b = appendFloatField(b, 6, p.Level)
	if p.Transform != nil {
		var sub []byte
		sub = appendFloatField(sub, 1, p.Transform.RotX)
		sub = appendFloatField(sub, 2, p.Transform.RotY)
		sub = appendFloatField(sub, 3, p.Transform.Scale[0])
		sub = appendFloatField(sub, 4, p.Transform.Scale[1])
		sub = appendFloatField(sub, 5, p.Transform.Scale[2])
		for _, off := range p.Transform.Offsets {
			sub = appendFloatFieldForce(sub, 6, off)
		}
		b = appendBytesField(b, 7, sub)
	}
	return b
}

func (p *BlockDetail) unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1, 2, 3, 4, 5:
			v, err := consumeVarint(value)
			if err != nil {
				return err
			}
			switch num {
			case 1:
				p.X = int32(v)
			case 2:
				p.Y = int32(v)
			case 3:
				p.Z = int32(v)
			case 4:
				p.Type = int32(v)
			case 5:
				p.Faces = uint32(v)
			}
		case 6:
			f, err := consumeFloat(value)
			if err != nil {
				return err
			}
			p.Level = f
		case 7:
			tr := &BlockTransform{}
			err := walkFields(value, func(n protowire.Number, t protowire.Type, v []byte) error {
				f, err := consumeFloat(v)
				if err != nil {
					return err
				}
				switch n {
				case 1:
					tr.RotX = f
				case 2:
					tr.RotY = f
				case 3:
					tr.Scale[0] = f
				case 4:
					tr.Scale[1] = f
				case 5:
					tr.Scale[2] = f
				case 6:
					tr.Offsets = append(tr.Offsets, f)
				}
				return nil
			})
			if err != nil {
				return err
			}
			p.Transform = tr
		}
		return nil
	})
}

// ChunkBlocksMessage substitui o conteúdo inteiro de um chunk.
type ChunkBlocksMessage struct {
	ChunkX int32
	ChunkZ int32
	MTime  int64
	Blocks []BlockDetail
}

func (m *ChunkBlocksMessage) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(uint32(m.ChunkX)))
	b = appendVarintField(b, 2, uint64(uint32(m.ChunkZ)))
	b = appendVarintField(b, 3, uint64(m.MTime))
	for i := range m.Blocks {
		b = appendBytesField(b, 4, m.Blocks[i].marshal())
	}
	return b
}

func (m *ChunkBlocksMessage) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		switch num {
		case 1, 2, 3:
			v, err := consumeVarint(value)
			if err != nil {
				return err
			}
			switch num {
			case 1:
				m.ChunkX = int32(v)
			case 2:
				m.ChunkZ = int32(v)
			case 3:
				m.MTime = int64(v)
			}
		case 4:
			var p BlockDetail
			if err := p.unmarshal(value); err != nil {
				return err
			}
			m.Blocks = append(m.Blocks, p)
		}
		return nil
	})
}

// ChunkUnloadMessage avisa que o chunk saiu do raio de interesse.
type ChunkUnloadMessage struct {
	ChunkX int32
	ChunkZ int32
}

func (m *ChunkUnloadMessage) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(uint32(m.ChunkX)))
	b = appendVarintField(b, 2, uint64(uint32(m.ChunkZ)))
	return b
}

func (m *ChunkUnloadMessage) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, value []byte) error {
		v, err := consumeVarint(value)
		if err != nil {
			return err
		}
		switch num {
		case 1:
			m.ChunkX = int32(v)
		case 2:
			m.ChunkZ = int32(v)
		}
		return nil
	})
}

// ---------- primitivas ----------

// walkFields percorre os campos de uma mensagem e entrega o valor bruto
// de cada um: varints re-codificados, length-delimited como fatia e
// fixed32/64 como bytes.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, value []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("tag inválida: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var value []byte
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return errTruncated
			}
			value = protowire.AppendVarint(nil, v)
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return errTruncated
			}
			value = v
			data = data[n:]
		case protowire.Fixed32Type:
			if len(data) < 4 {
				return errTruncated
			}
			value = data[:4]
			data = data[4:]
		case protowire.Fixed64Type:
			if len(data) < 8 {
				return errTruncated
			}
			value = data[:8]
			data = data[8:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return errTruncated
			}
			data = data[n:]
			continue
		}

		if err := fn(num, typ, value); err != nil {
			return err
		}
	}
	return nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendFloatField(b []byte, num protowire.Number, v float32) []byte {
	if v == 0 {
		return b
	}
	return appendFloatFieldForce(b, num, v)
}

func appendFloatFieldForce(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func consumeVarint(value []byte) (uint64, error) {
	v, n := protowire.ConsumeVarint(value)
	if n < 0 {
		return 0, errTruncated
	}
	return v, nil
}

func consumeFloat(value []byte) (float32, error) {
	v, n := protowire.ConsumeFixed32(value)
	if n < 0 {
		return 0, errTruncated
	}
	return math.Float32frombits(v), nil
}
