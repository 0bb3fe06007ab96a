package export

import (
	"github.com/powerlab/transistordb/internal/domain"
	"github.com/powerlab/transistordb/internal/repository"
)

// JSON renders the canonical single-record file. It round-trips through the
// store codec, so an exported file can be imported again unchanged.
func JSON(t *domain.Transistor) (File, error) {
	data, err := repository.Encode(t)
	if err != nil {
		return File{}, err
	}
	return File{Name: t.Name + ".json", Data: data}, nil
}
