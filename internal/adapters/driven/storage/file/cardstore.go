package file

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/fsutil"
)

// Ensure CardStore implements the interface.
var _ driven.CardStore = (*CardStore)(nil)

const cardExt = ".yaml"

// CardStore keeps one YAML file per card in a directory.
type CardStore struct {
	dir string
}

// NewCardStore returns a store rooted at dir. The directory is created on first save.
func NewCardStore(dir string) *CardStore {
	return &CardStore{dir: dir}
}

// Dir returns the cards directory.
func (s *CardStore) Dir() string {
	return s.dir
}

func (s *CardStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: invalid card id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, id+cardExt), nil
}

// Load reads the card file for id.
func (s *CardStore) Load(_ context.Context, id string) (*domain.Card, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	card, err := readCard(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Save replaces the card file atomically.
func (s *CardStore) Save(ctx context.Context, card domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(card.ID)
	if err != nil {
		return err
	}
	data, err := MarshalCard(card)
	if err != nil {
		return err
	}
	return domain.NewIOError("write card "+card.ID, fsutil.WriteFileAtomic(path, data, 0o644))
}

// All yields every card in file name order. A missing directory yields nothing.
func (s *CardStore) All(ctx context.Context) iter.Seq2[domain.Card, error] {
	return func(yield func(domain.Card, error) bool) {
		entries, err := os.ReadDir(s.dir)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			yield(domain.Card{}, domain.NewIOError("list cards", err))
			return
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != cardExt || fsutil.IsTemp(e.Name()) {
				continue
			}
			names = append(names, e.Name())
		}
		slices.Sort(names)

		for _, name := range names {
			if err := ctx.Err(); err != nil {
				yield(domain.Card{}, err)
				return
			}
			card, err := readCard(filepath.Join(s.dir, name))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err == nil && card.ID+cardExt != name {
				err = fmt.Errorf("%w: %s holds card %s", domain.ErrInvalidInput, name, card.ID)
			}
			if err != nil {
				if !yield(domain.Card{}, err) {
					return
				}
				continue
			}
			if !yield(*card, nil) {
				return
			}
		}
	}
}

// MarshalCard encodes the persisted form of a card. Every field is
// written, with [] for empty lists and null for absent optionals.
func MarshalCard(card domain.Card) ([]byte, error) {
	data, err := yaml.Marshal(card.Normalized())
	if err != nil {
		return nil, fmt.Errorf("encode card %s: %w", card.ID, err)
	}
	return data, nil
}

// UnmarshalCard decodes the persisted form of a card.
func UnmarshalCard(data []byte) (*domain.Card, error) {
	var card domain.Card
	if err := yaml.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("%w: decode card: %v", domain.ErrInvalidInput, err)
	}
	card = card.Normalized()
	return &card, nil
}

func readCard(path string) (*domain.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, domain.NewIOError("read card", err)
	}
	card, err := UnmarshalCard(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return card, nil
}
