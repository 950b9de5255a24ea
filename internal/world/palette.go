package world

import (
	"errors"
	"fmt"
	"iter"

	"github.com/annel0/voxel-world/internal/world/block"
)

// MaxPaletteSize — максимум различных блоков в одном чанке.
// Индекс палитры хранится в одном байте на воксель.
const MaxPaletteSize = 255

var (
	// ErrPaletteOverflow — в чанк попытались поместить 256-й различный блок.
	ErrPaletteOverflow = errors.New("palette overflow: too many unique blocks in chunk")
	// ErrCorruptPalette — сохранённая палитра нарушает инварианты.
	ErrCorruptPalette = errors.New("corrupt palette")
)

// Palette отображает локальные индексы чанка в глобальные ID блоков.
// Индекс 0 всегда занят воздухом.
type Palette struct {
	ids     []block.BlockID
	indices map[block.BlockID]uint8
}

// NewPalette создаёт палитру, содержащую только воздух
func NewPalette() *Palette {
	p := &Palette{
		ids:     make([]block.BlockID, 0, 4),
		indices: make(map[block.BlockID]uint8, 4),
	}
	p.append(block.AirBlockID)
	return p
}

// PaletteFromIDs восстанавливает палитру из упорядоченного списка ID
func PaletteFromIDs(ids []block.BlockID) (*Palette, error) {
	if len(ids) == 0 || ids[0] != block.AirBlockID {
		return nil, fmt.Errorf("%w: index 0 must be air", ErrCorruptPalette)
	}
	if len(ids) > MaxPaletteSize {
		return nil, fmt.Errorf("%w: %d entries", ErrCorruptPalette, len(ids))
	}

	p := &Palette{
		ids:     make([]block.BlockID, 0, len(ids)),
		indices: make(map[block.BlockID]uint8, len(ids)),
	}
	for _, id := range ids {
		if _, dup := p.indices[id]; dup {
			return nil, fmt.Errorf("%w: duplicate block %d", ErrCorruptPalette, id)
		}
		p.append(id)
	}
	return p, nil
}

func (p *Palette) append(id block.BlockID) uint8 {
	index := uint8(len(p.ids))
	p.ids = append(p.ids, id)
	p.indices[id] = index
	return index
}

// Add возвращает индекс блока, добавляя его при необходимости.
// Повторное добавление возвращает тот же индекс.
func (p *Palette) Add(id block.BlockID) (uint8, error) {
	if index, ok := p.indices[id]; ok {
		return index, nil
	}
	if len(p.ids) >= MaxPaletteSize {
		return 0, fmt.Errorf("%w: block %d", ErrPaletteOverflow, id)
	}
	return p.append(id), nil
}

// Resolve возвращает ID блока по индексу; неизвестный индекс — воздух
func (p *Palette) Resolve(index uint8) block.BlockID {
	if int(index) >= len(p.ids) {
		return block.AirBlockID
	}
	return p.ids[index]
}

// IndexOf возвращает индекс блока, если он есть в палитре
func (p *Palette) IndexOf(id block.BlockID) (uint8, bool) {
	index, ok := p.indices[id]
	return index, ok
}

// Len возвращает количество записей
func (p *Palette) Len() int {
	return len(p.ids)
}

// All перебирает пары (индекс, ID) в порядке добавления
func (p *Palette) All() iter.Seq2[uint8, block.BlockID] {
	return func(yield func(uint8, block.BlockID) bool) {
		for i, id := range p.ids {
			if !yield(uint8(i), id) {
				return
			}
		}
	}
}

// IDs возвращает копию упорядоченного списка ID
func (p *Palette) IDs() []block.BlockID {
	out := make([]block.BlockID, len(p.ids))
	copy(out, p.ids)
	return out
}
