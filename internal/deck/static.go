package deck

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type staticFile struct {
	Slides []Slide `yaml:"slides"`
}

// LoadStatic reads the static deck from a YAML file with a top-level
// "slides" list. An empty path or a missing file yields an empty deck.
func LoadStatic(path string) ([]Slide, error) {
	if strings.TrimSpace(path) == "" {
		return []Slide{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Slide{}, nil
		}
		return nil, fmt.Errorf("read deck: %w", err)
	}
	var file staticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	for i, slide := range file.Slides {
		if strings.TrimSpace(slide.ID) == "" {
			return nil, fmt.Errorf("parse deck: slide %d has no id", i)
		}
	}
	if file.Slides == nil {
		return []Slide{}, nil
	}
	return file.Slides, nil
}
