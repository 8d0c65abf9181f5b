package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pipeline/common"
)

// SourceExt is the file extension LoadDir picks up.
const SourceExt = ".wgsl"

// store is the implementation of the Store interface.
type store struct {
	mu      sync.RWMutex
	shaders map[ID]Shader
	byName  map[string]ID
	byPath  map[string]ID
	order   []ID
	gen     uint64

	validate Validator
	workers  int
	pool     worker.DynamicWorkerPool
}

// Store is the set of shader assets known to the application. The renderer's frame-bind step
// iterates it to compile shaders that are not loaded yet. Names are unique within a Store and
// re-adding a name keeps the existing shader and its ID.
type Store interface {
	// Add registers WGSL source under name. If name is already registered its source is
	// replaced and the existing Shader is returned with its ID unchanged.
	//
	// Parameters:
	//   - name: the unique shader name
	//   - source: the WGSL source
	//
	// Returns:
	//   - Shader: the registered shader
	Add(name, source string) Shader

	// AddFromPath reads a WGSL file and registers it under its base name without extension.
	//
	// Parameters:
	//   - path: the file to read
	//
	// Returns:
	//   - Shader: the registered shader
	//   - error: an error if the file could not be read
	AddFromPath(path string) (Shader, error)

	// LoadDir reads every .wgsl file in dir in parallel on the store's worker pool and registers
	// them in file name order.
	//
	// Parameters:
	//   - dir: the directory to scan, not recursive
	//
	// Returns:
	//   - []Shader: the registered shaders in file name order
	//   - error: the first read error, wrapped with the file path
	LoadDir(dir string) ([]Shader, error)

	// Reload re-reads the file a shader was loaded from and replaces its source.
	//
	// Parameters:
	//   - path: the file path the shader was added from
	//
	// Returns:
	//   - Shader: the reloaded shader
	//   - error: ErrNotFound if no shader was added from path, or the read error
	Reload(path string) (Shader, error)

	// Get looks up a shader by ID.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - Shader: the shader, or nil if not found
	//   - bool: true if the shader was found
	Get(id ID) (Shader, bool)

	// ByName looks up a shader by name.
	//
	// Parameters:
	//   - name: the shader name
	//
	// Returns:
	//   - Shader: the shader, or nil if not found
	//   - bool: true if the shader was found
	ByName(name string) (Shader, bool)

	// Remove unregisters a shader and unloads its module.
	//
	// Parameters:
	//   - id: the shader ID
	//
	// Returns:
	//   - bool: true if the shader was registered
	Remove(id ID) bool

	// Each calls fn for every shader in registration order.
	//
	// Parameters:
	//   - fn: the callback
	Each(fn func(Shader))

	// Len returns the number of registered shaders.
	//
	// Returns:
	//   - int: the shader count
	Len() int

	// Generation returns a counter that moves whenever a shader is added, has its source replaced
	// or is removed.
	//
	// Returns:
	//   - uint64: the change generation
	Generation() uint64
}

var _ Store = &store{}

// NewStore creates an empty Store with all specified options applied.
//
// Parameters:
//   - options: optional builder options
//
// Returns:
//   - Store: the new store
func NewStore(options ...StoreBuilderOption) Store {
	s := &store{
		shaders: make(map[ID]Shader),
		byName:  make(map[string]ID),
		byPath:  make(map[string]ID),
		workers: 4,
	}
	for _, opt := range options {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 64, 1*time.Second)
	return s
}

func (s *store) Add(name, source string) Shader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(name, "", source)
}

// add registers or updates a shader. Callers must hold mu.
func (s *store) add(name, path, source string) Shader {
	s.gen++
	if id, ok := s.byName[name]; ok {
		existing := s.shaders[id]
		existing.SetSource(source)
		if path != "" {
			if impl, ok := existing.(*shader); ok {
				impl.path = path
			}
			s.byPath[path] = id
		}
		return existing
	}

	opts := []ShaderBuilderOption{WithValidator(s.validate)}
	if path != "" {
		opts = append(opts, WithPath(path))
	}
	created := NewShader(name, source, opts...)
	s.shaders[created.ID()] = created
	s.byName[name] = created.ID()
	if path != "" {
		s.byPath[path] = created.ID()
	}
	s.order = append(s.order, created.ID())
	return created
}

func (s *store) AddFromPath(path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %q: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(nameFromPath(path), cleanPath(path), string(data)), nil
}

func (s *store) LoadDir(dir string) ([]Shader, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader directory %q: %w", dir, err)
	}

	paths := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), SourceExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	sources := make([]string, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		idx := i
		p := path
		s.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				data, readErr := os.ReadFile(p)
				if readErr != nil {
					errs[idx] = fmt.Errorf("failed to read shader source %q: %w", p, readErr)
					return nil, errs[idx]
				}
				sources[idx] = string(data)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := make([]Shader, len(paths))
	for i, path := range paths {
		loaded[i] = s.add(nameFromPath(path), cleanPath(path), sources[i])
	}
	common.Logger().Info("shader directory loaded", "dir", dir, "count", len(loaded))
	return loaded, nil
}

func (s *store) Reload(path string) (Shader, error) {
	path = cleanPath(path)

	s.mu.RLock()
	id, ok := s.byPath[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no shader loaded from %q", ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %q: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.shaders[id]
	if !ok {
		return nil, fmt.Errorf("%w: no shader loaded from %q", ErrNotFound, path)
	}
	existing.SetSource(string(data))
	s.gen++
	return existing, nil
}

func (s *store) Get(id ID) (Shader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shaders[id]
	return sh, ok
}

func (s *store) ByName(name string) (Shader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.shaders[id], true
}

func (s *store) Remove(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shaders[id]
	if !ok {
		return false
	}
	sh.Unload()
	s.gen++
	delete(s.shaders, id)
	delete(s.byName, sh.Name())
	if sh.Path() != "" {
		delete(s.byPath, sh.Path())
	}
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *store) Each(fn func(Shader)) {
	s.mu.RLock()
	snapshot := make([]Shader, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.shaders[id])
	}
	s.mu.RUnlock()

	for _, sh := range snapshot {
		fn(sh)
	}
}

func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shaders)
}

func (s *store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
