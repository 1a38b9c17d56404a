package mockapi

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/binding"
)

//go:embed data/seed.yaml
var dataFS embed.FS

const defaultSeedPath = "data/seed.yaml"

const (
	KeyField     = "ID"
	parentPrefix = "P"
	childPrefix  = "C"
)

// Record is one row.
type Record = map[string]any

var (
	ErrNotFound      = errors.New("mockapi: record not found")
	ErrUnknownParent = errors.New("mockapi: unknown parent")
)

// Dataset is the seed document shape.
type Dataset struct {
	Parents  []Record `yaml:"parents"`
	Children []Record `yaml:"children"`
}

// Store keeps parent and child records in memory.
type Store struct {
	mu          sync.RWMutex
	parents     []Record
	children    []Record
	parentParam string
	nextParent  int
	nextChild   int
}

// LoadDataset decodes a YAML seed document.
func LoadDataset(r io.Reader) (Dataset, error) {
	if r == nil {
		return Dataset{}, fmt.Errorf("mockapi: missing reader")
	}
	var data Dataset
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return Dataset{}, fmt.Errorf("mockapi: decode seed: %w", err)
	}
	return data, nil
}

// DefaultDataset returns the embedded seed data.
func DefaultDataset() (Dataset, error) {
	f, err := dataFS.Open(defaultSeedPath)
	if err != nil {
		return Dataset{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadDataset(f)
}

// NewStore copies data into a new store. parentParam names the child
// field that references a parent.
func NewStore(data Dataset, parentParam string) *Store {
	if parentParam == "" {
		parentParam = DefaultOptions().ParentParam
	}
	s := &Store{parentParam: parentParam}
	for _, record := range data.Parents {
		s.parents = append(s.parents, maps.Clone(record))
		s.nextParent = max(s.nextParent, sequence(record[KeyField], parentPrefix))
	}
	for _, record := range data.Children {
		s.children = append(s.children, maps.Clone(record))
		s.nextChild = max(s.nextChild, sequence(record[KeyField], childPrefix))
	}
	return s
}

func sequence(id any, prefix string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(binding.Stringify(id), prefix))
	if err != nil {
		return 0
	}
	return n
}

// Query selects and pages parent records.
type Query struct {
	Current   int
	PageSize  int
	SortField string
	// SortOrder is "ascend" or "descend".
	SortOrder string
	Filters   map[string]string
	Fuzzy     bool
}

// List returns one page of parents and the filtered total.
func (s *Store) List(q Query) ([]Record, int) {
	s.mu.RLock()
	matched := make([]Record, 0, len(s.parents))
	for _, record := range s.parents {
		if matches(record, q.Filters, q.Fuzzy) {
			matched = append(matched, maps.Clone(record))
		}
	}
	s.mu.RUnlock()

	if q.SortField != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			if q.SortOrder == "descend" {
				return compare(matched[j][q.SortField], matched[i][q.SortField]) < 0
			}
			return compare(matched[i][q.SortField], matched[j][q.SortField]) < 0
		})
	}

	total := len(matched)
	current := max(q.Current, 1)
	size := q.PageSize
	if size <= 0 {
		size = 20
	}
	start := (current - 1) * size
	if start >= total {
		return []Record{}, total
	}
	end := min(start+size, total)
	return matched[start:end], total
}

func matches(record Record, filters map[string]string, fuzzy bool) bool {
	for key, want := range filters {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		got, ok := record[key]
		if !ok {
			return false
		}
		have := binding.Stringify(got)
		if fuzzy {
			if !strings.Contains(strings.ToLower(have), strings.ToLower(want)) {
				return false
			}
			continue
		}
		if !strings.EqualFold(have, want) {
			return false
		}
	}
	return true
}

func compare(a, b any) int {
	as, bs := binding.Stringify(a), binding.Stringify(b)
	af, aErr := strconv.ParseFloat(as, 64)
	bf, bErr := strconv.ParseFloat(bs, 64)
	if aErr == nil && bErr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(as, bs)
}

// Children returns the child records of one parent, or all of them when
// parentID is empty.
func (s *Store) Children(parentID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for _, record := range s.children {
		if parentID == "" || binding.Stringify(record[s.parentParam]) == parentID {
			out = append(out, maps.Clone(record))
		}
	}
	return out
}

// Save updates the record whose id matches or inserts a new one. Records
// carrying a parent reference, or a child id, are children.
func (s *Store) Save(record Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := binding.Stringify(record[KeyField])
	child := strings.HasPrefix(id, childPrefix) || binding.Stringify(record[s.parentParam]) != ""

	if id != "" {
		rows := s.parents
		if child {
			rows = s.children
		}
		for _, existing := range rows {
			if binding.Stringify(existing[KeyField]) == id {
				maps.Copy(existing, record)
				return maps.Clone(existing), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	saved := maps.Clone(record)
	if child {
		parentID := binding.Stringify(record[s.parentParam])
		if s.parentIndexLocked(parentID) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
		}
		s.nextChild++
		saved[KeyField] = childPrefix + strconv.Itoa(s.nextChild)
		s.children = append(s.children, saved)
	} else {
		s.nextParent++
		saved[KeyField] = parentPrefix + strconv.Itoa(s.nextParent)
		s.parents = append(s.parents, saved)
	}
	return maps.Clone(saved), nil
}

func (s *Store) parentIndexLocked(id string) int {
	for idx, record := range s.parents {
		if binding.Stringify(record[KeyField]) == id {
			return idx
		}
	}
	return -1
}

// Remove deletes records by id. Removing a parent removes its children.
// It returns the number of records named in ids that existed.
func (s *Store) Remove(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	removed := 0
	parents := s.parents[:0]
	for _, record := range s.parents {
		if _, ok := targets[binding.Stringify(record[KeyField])]; ok {
			removed++
			continue
		}
		parents = append(parents, record)
	}
	s.parents = parents

	children := s.children[:0]
	for _, record := range s.children {
		if _, ok := targets[binding.Stringify(record[KeyField])]; ok {
			removed++
			continue
		}
		if _, ok := targets[binding.Stringify(record[s.parentParam])]; ok {
			continue
		}
		children = append(children, record)
	}
	s.children = children
	return removed
}
