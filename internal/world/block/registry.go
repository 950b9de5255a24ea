package block

import (
	"errors"
	"fmt"
	"iter"
	"sync"
)

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID встроенных блоков
const (
	AirBlockID   BlockID = iota // 0 — зарезервирован за воздухом
	StoneBlockID                // 1
	DirtBlockID                 // 2
	GrassBlockID                // 3
	WoodBlockID                 // 4
)

// Имена встроенных блоков
const (
	AirName   = "air"
	StoneName = "stone"
	DirtName  = "dirt"
	GrassName = "grass"
	WoodName  = "wood"
)

var (
	// ErrReservedID возвращается при попытке переопределить воздух твёрдым блоком.
	ErrReservedID = errors.New("block id 0 is reserved for air")
	// ErrDuplicateName возвращается, если имя уже занято другим ID.
	ErrDuplicateName = errors.New("block name already registered")
	// ErrEmptyName возвращается для определения без имени.
	ErrEmptyName = errors.New("block name is empty")
)

// Kind — грубая классификация блока для быстрых проверок твёрдости
type Kind uint8

const (
	KindAir Kind = iota
	KindSolid
)

// IsSolid возвращает true для твёрдых блоков
func (k Kind) IsSolid() bool {
	return k == KindSolid
}

// IsAir возвращает true для воздуха
func (k Kind) IsAir() bool {
	return k == KindAir
}

func (k Kind) String() string {
	switch k {
	case KindAir:
		return "air"
	case KindSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Def описывает тип блока. После регистрации не изменяется.
type Def struct {
	ID        BlockID
	Name      string
	Kind      Kind
	TextureID uint16
}

// Builtin возвращает встроенный набор блоков в порядке ID
func Builtin() []Def {
	return []Def{
		{ID: AirBlockID, Name: AirName, Kind: KindAir, TextureID: 0},
		{ID: StoneBlockID, Name: StoneName, Kind: KindSolid, TextureID: 1},
		{ID: DirtBlockID, Name: DirtName, Kind: KindSolid, TextureID: 2},
		{ID: GrassBlockID, Name: GrassName, Kind: KindSolid, TextureID: 3},
		{ID: WoodBlockID, Name: WoodName, Kind: KindSolid, TextureID: 4},
	}
}

// Registry хранит двустороннее отображение id ↔ имя ↔ определение.
// Создаётся явно и передаётся потребителям; безопасен для параллельного чтения.
type Registry struct {
	mu     sync.RWMutex
	blocks map[BlockID]Def
	names  map[string]BlockID
}

// NewRegistry создаёт реестр со встроенными блоками
func NewRegistry() *Registry {
	r := &Registry{
		blocks: make(map[BlockID]Def),
		names:  make(map[string]BlockID),
	}
	for _, def := range Builtin() {
		if err := r.Register(def); err != nil {
			panic(fmt.Sprintf("встроенный блок %q: %v", def.Name, err))
		}
	}
	return r
}

// Register добавляет определение или перезаписывает существующее с тем же ID
func (r *Registry) Register(def Def) error {
	if def.Name == "" {
		return fmt.Errorf("register block %d: %w", def.ID, ErrEmptyName)
	}
	if def.ID == AirBlockID && def.Kind != KindAir {
		return fmt.Errorf("register %q: %w", def.Name, ErrReservedID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, exists := r.names[def.Name]; exists && owner != def.ID {
		return fmt.Errorf("register %q as %d (owned by %d): %w", def.Name, def.ID, owner, ErrDuplicateName)
	}

	// Старое имя перезаписываемого блока больше не должно на него указывать
	if prev, exists := r.blocks[def.ID]; exists && prev.Name != def.Name {
		delete(r.names, prev.Name)
	}

	r.blocks[def.ID] = def
	r.names[def.Name] = def.ID
	return nil
}

// Get возвращает определение по ID
func (r *Registry) Get(id BlockID) (Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.blocks[id]
	return def, ok
}

// GetByName возвращает определение по имени
func (r *Registry) GetByName(name string) (Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if !ok {
		return Def{}, false
	}
	def, ok := r.blocks[id]
	return def, ok
}

// GetKind возвращает вид блока; неизвестные ID считаются воздухом
func (r *Registry) GetKind(id BlockID) Kind {
	if id == AirBlockID {
		return KindAir
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.blocks[id]; ok {
		return def.Kind
	}
	return KindAir
}

// IsSolid проверяет твёрдость блока
func (r *Registry) IsSolid(id BlockID) bool {
	return r.GetKind(id).IsSolid()
}

// IsAir проверяет, ведёт ли себя блок как воздух
func (r *Registry) IsAir(id BlockID) bool {
	return r.GetKind(id).IsAir()
}

// Len возвращает количество зарегистрированных блоков
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.blocks)
}

// All перебирает определения в произвольном порядке.
// Перебор идёт по снимку, поэтому Register внутри цикла безопасен.
func (r *Registry) All() iter.Seq[Def] {
	return func(yield func(Def) bool) {
		r.mu.RLock()
		snapshot := make([]Def, 0, len(r.blocks))
		for _, def := range r.blocks {
			snapshot = append(snapshot, def)
		}
		r.mu.RUnlock()

		for _, def := range snapshot {
			if !yield(def) {
				return
			}
		}
	}
}
