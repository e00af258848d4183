package pattern

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var builtinFS embed.FS

// DefaultProfileID is the profile used when none is configured.
const DefaultProfileID = "ko-statute"

// Registry manages a collection of structure profiles.
type Registry interface {
	// Register adds a profile to the registry
	Register(profile *Profile) error

	// Unregister removes a profile from the registry
	Unregister(profileID string) error

	// Get returns a profile by its ID
	Get(profileID string) (*Profile, bool)

	// List returns all registered profiles ordered by ID
	List() []*Profile

	// Reload reloads built-in profiles and the configured directory
	Reload() error

	// Watch starts watching the profile directory for changes
	Watch() error

	// StopWatch stops watching the profile directory
	StopWatch()

	// LoadDirectory loads all profiles from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single profile file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the profile Registry.
type DefaultRegistry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	files    map[string]string // file path -> profile ID
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, profile *Profile)
	logger   *slog.Logger
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		profiles: make(map[string]*Profile),
		files:    make(map[string]string),
		logger:   slog.Default(),
	}
}

// NewDefaultRegistry creates a registry preloaded with the built-in profiles.
// When dir is non-empty, profiles found there are loaded on top and may
// replace a built-in profile of the same ID with a different version.
func NewDefaultRegistry(dir string) (*DefaultRegistry, error) {
	r := NewRegistry()
	if err := r.LoadBuiltins(); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := r.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetLogger sets the logger used for watch and reload errors.
func (r *DefaultRegistry) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Register adds a profile to the registry.
func (r *DefaultRegistry) Register(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	if errs := ValidateSchema(profile); len(errs) > 0 {
		return fmt.Errorf("invalid profile: %w", errs)
	}

	if !profile.IsCompiled() {
		if err := profile.Compile(); err != nil {
			return fmt.Errorf("compiling profile %q: %w", profile.ProfileID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[profile.ProfileID]; ok {
		// Allow update if version is different
		if existing.Version == profile.Version {
			return fmt.Errorf("profile %q version %s already registered", profile.ProfileID, profile.Version)
		}
	}

	r.profiles[profile.ProfileID] = profile
	return nil
}

// Unregister removes a profile from the registry.
func (r *DefaultRegistry) Unregister(profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profileID]; !ok {
		return fmt.Errorf("profile %q not found", profileID)
	}

	delete(r.profiles, profileID)
	return nil
}

// Get returns a profile by its ID.
func (r *DefaultRegistry) Get(profileID string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[profileID]
	return profile, ok
}

// List returns all registered profiles ordered by ID.
func (r *DefaultRegistry) List() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ProfileID < profiles[j].ProfileID
	})
	return profiles
}

// Count returns the number of registered profiles.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// LoadBuiltins registers the profiles embedded in the binary.
func (r *DefaultRegistry) LoadBuiltins() error {
	entries, err := fs.ReadDir(builtinFS, "profiles")
	if err != nil {
		return fmt.Errorf("reading built-in profiles: %w", err)
	}

	for _, entry := range entries {
		data, err := builtinFS.ReadFile(path.Join("profiles", entry.Name()))
		if err != nil {
			return fmt.Errorf("reading built-in profile %s: %w", entry.Name(), err)
		}
		profile, err := ParseProfile(data)
		if err != nil {
			return fmt.Errorf("built-in profile %s: %w", entry.Name(), err)
		}
		if err := r.Register(profile); err != nil {
			return fmt.Errorf("registering built-in profile %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// BuiltinProfile returns a freshly parsed and compiled copy of a built-in profile.
func BuiltinProfile(profileID string) (*Profile, error) {
	data, err := builtinFS.ReadFile(path.Join("profiles", profileID+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("built-in profile %q not found", profileID)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	if err := profile.Compile(); err != nil {
		return nil, err
	}
	return profile, nil
}

// ParseProfile decodes a YAML profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &profile, nil
}

// MarshalProfile encodes a profile back to YAML.
func MarshalProfile(profile *Profile) ([]byte, error) {
	return yaml.Marshal(profile)
}

// LoadDirectory loads all YAML profile files from a directory.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist, nothing to load
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading profiles: %s", strings.Join(loadErrors, "; "))
	}

	return nil
}

// LoadFile loads a single profile file.
func (r *DefaultRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	profile, err := ParseProfile(data)
	if err != nil {
		return err
	}

	if err := r.Register(profile); err != nil {
		return fmt.Errorf("registering profile: %w", err)
	}

	r.mu.Lock()
	r.files[path] = profile.ProfileID
	r.mu.Unlock()

	return nil
}

// Reload clears the registry and reloads built-ins and the configured directory.
func (r *DefaultRegistry) Reload() error {
	r.mu.Lock()
	r.profiles = make(map[string]*Profile)
	r.files = make(map[string]string)
	dir := r.dir
	r.mu.Unlock()

	if err := r.LoadBuiltins(); err != nil {
		return err
	}
	if dir == "" {
		return nil
	}
	return r.LoadDirectory(dir)
}

// SetOnChange sets a callback function that is called when profiles change.
func (r *DefaultRegistry) SetOnChange(fn func(event string, profile *Profile)) {
	r.onChange = fn
}

// Watch starts watching the profile directory for changes.
func (r *DefaultRegistry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	return nil
}

// watchLoop handles file system events.
func (r *DefaultRegistry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Has(fsnotify.Create):
				r.handleFileChange(event.Name, "create")

			case event.Has(fsnotify.Write):
				r.handleFileChange(event.Name, "modify")

			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("profile watcher error", "dir", r.dir, "error", err)
		}
	}
}

// handleFileChange handles file creation or modification.
func (r *DefaultRegistry) handleFileChange(path string, eventType string) {
	r.mu.RLock()
	previousID, known := r.files[path]
	r.mu.RUnlock()

	// An edited file keeps its version number more often than not, so drop the
	// old registration before loading it again.
	if known {
		_ = r.Unregister(previousID)
	}

	if err := r.LoadFile(path); err != nil {
		r.logger.Warn("failed to load profile", "path", path, "error", err)
		return
	}

	if r.onChange != nil {
		if profile, ok := r.getProfileByFile(path); ok {
			r.onChange(eventType, profile)
		}
	}
}

// handleFileRemove handles file removal.
func (r *DefaultRegistry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.logger.Warn("failed to reload profiles", "dir", r.dir, "error", err)
	}

	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

// getProfileByFile finds the profile that was loaded from the given file.
func (r *DefaultRegistry) getProfileByFile(path string) (*Profile, bool) {
	r.mu.RLock()
	profileID, ok := r.files[path]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.Get(profileID)
}

// StopWatch stops watching the profile directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

// Clear removes all profiles from the registry.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = make(map[string]*Profile)
	r.files = make(map[string]string)
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
