package block

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// packFile — формат YAML-набора блоков (контент-пака).
//
//	blocks:
//	  - id: 10
//	    name: sand
//	    kind: solid
//	    texture: 10
type packFile struct {
	Blocks []packBlock `yaml:"blocks"`
}

type packBlock struct {
	ID      BlockID `yaml:"id"`
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Texture uint16  `yaml:"texture"`
}

// ParseKind разбирает строковое имя вида блока
func ParseKind(s string) (Kind, error) {
	switch s {
	case "air":
		return KindAir, nil
	case "solid", "":
		return KindSolid, nil
	default:
		return KindAir, fmt.Errorf("неизвестный вид блока %q", s)
	}
}

// LoadYAML регистрирует блоки из YAML-потока и возвращает их количество.
// Загрузка прекращается на первой ошибке; уже зарегистрированные блоки остаются.
func LoadYAML(r io.Reader, registry *Registry) (int, error) {
	var pack packFile
	if err := yaml.NewDecoder(r).Decode(&pack); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка разбора набора блоков: %w", err)
	}

	for i, pb := range pack.Blocks {
		kind, err := ParseKind(pb.Kind)
		if err != nil {
			return i, fmt.Errorf("блок %q: %w", pb.Name, err)
		}
		def := Def{ID: pb.ID, Name: pb.Name, Kind: kind, TextureID: pb.Texture}
		if err := registry.Register(def); err != nil {
			return i, err
		}
	}
	return len(pack.Blocks), nil
}

// LoadYAMLFile читает набор блоков из файла
func LoadYAMLFile(path string, registry *Registry) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := LoadYAML(f, registry)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
