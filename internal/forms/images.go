package forms

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"

	"venuebook/pkg/model"
)

const DefaultMaxImages = 4

type ImageLimitError struct {
	Max      int
	Selected int
}

func (e *ImageLimitError) Error() string {
	return fmt.Sprintf("You can upload a maximum of %d images.", e.Max)
}

// ImageSelection is the file picker of the venue dialogs. A selection over
// the limit is rejected and the previous selection stays as it was.
type ImageSelection struct {
	max   int
	files []model.ImageFile
}

func NewImageSelection(maxImages int) *ImageSelection {
	if maxImages < 1 {
		maxImages = DefaultMaxImages
	}
	return &ImageSelection{max: maxImages}
}

func (s *ImageSelection) Select(files []model.ImageFile) error {
	if len(files) > s.max {
		return &ImageLimitError{Max: s.max, Selected: len(files)}
	}
	s.files = slices.Clone(files)
	return nil
}

func (s *ImageSelection) Files() []model.ImageFile {
	return slices.Clone(s.files)
}

func (s *ImageSelection) Len() int {
	return len(s.files)
}

func (s *ImageSelection) Max() int {
	return s.max
}

func (s *ImageSelection) Clear() {
	s.files = nil
}

// ReadImageFiles loads image files from disk for a selection.
func ReadImageFiles(paths []string) ([]model.ImageFile, error) {
	files := make([]model.ImageFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", p, err)
		}
		files = append(files, model.ImageFile{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return files, nil
}
