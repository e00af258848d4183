package pattern

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const customProfileYAML = `name: Custom statute
profile_id: custom-statute
version: 1.0.0
language: en
chapter:
  boundary: '\s+Part\s+(\d+)\s+(.+?)\s*(?:$|\n)'
sections:
  - kind: article
    pattern: '\sSection\s+\d+\s*\(.+?\)'
article:
  header: 'Section\s+(\d+)\s*\((.*?)\)'
clause:
  marker: '([①-⑳])\s'
`

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
}

func TestNewDefaultRegistryLoadsBuiltins(t *testing.T) {
	registry, err := NewDefaultRegistry("")
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	if _, ok := registry.Get(DefaultProfileID); !ok {
		t.Errorf("default profile %q not registered", DefaultProfileID)
	}
	if _, ok := registry.Get("en-statute"); !ok {
		t.Error("en-statute not registered")
	}

	list := registry.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ProfileID > list[i].ProfileID {
			t.Errorf("List() not sorted: %q before %q", list[i-1].ProfileID, list[i].ProfileID)
		}
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	profile := minimalProfile("test-profile")
	if err := registry.Register(profile); err != nil {
		t.Errorf("Register() error = %v", err)
	}
	if !profile.IsCompiled() {
		t.Error("Register() should compile the profile")
	}

	if err := registry.Register(nil); err == nil {
		t.Error("Register(nil) should return error")
	}

	if err := registry.Register(minimalProfile("test-profile")); err == nil {
		t.Error("Register() duplicate version should return error")
	}

	newer := minimalProfile("test-profile")
	newer.Version = "2.0.0"
	if err := registry.Register(newer); err != nil {
		t.Errorf("Register() new version error = %v", err)
	}
	if got, _ := registry.Get("test-profile"); got.Version != "2.0.0" {
		t.Errorf("Get() Version = %q, want 2.0.0", got.Version)
	}
}

func TestRegistryRegisterInvalidProfile(t *testing.T) {
	registry := NewRegistry()

	invalid := &Profile{Name: "Invalid"}
	if err := registry.Register(invalid); err == nil {
		t.Error("Register() invalid profile should return error")
	}

	badRegex := minimalProfile("bad-regex")
	badRegex.Article.Header = `(unclosed`
	if err := registry.Register(badRegex); err == nil {
		t.Error("Register() invalid regex should return error")
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(minimalProfile("test-profile")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := registry.Unregister("test-profile"); err != nil {
		t.Errorf("Unregister() error = %v", err)
	}
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
	if err := registry.Unregister("non-existent"); err == nil {
		t.Error("Unregister() non-existent should return error")
	}
}

func TestRegistryLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(customProfileYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := NewDefaultRegistry(dir)
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}

	custom, ok := registry.Get("custom-statute")
	if !ok {
		t.Fatal("custom-statute not loaded")
	}
	if !custom.IsCompiled() {
		t.Error("loaded profile should be compiled")
	}
	if registry.Count() != 3 {
		t.Errorf("Count() = %d, want 3", registry.Count())
	}
}

func TestRegistryLoadDirectoryMissing(t *testing.T) {
	registry := NewRegistry()
	if err := registry.LoadDirectory(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("LoadDirectory() on missing dir error = %v, want nil", err)
	}
}

func TestRegistryLoadDirectoryBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry()
	if err := registry.LoadDirectory(dir); err == nil {
		t.Error("LoadDirectory() should report broken YAML")
	}
}

func TestRegistryReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(customProfileYAML), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := NewDefaultRegistry(dir)
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := registry.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := registry.Get("custom-statute"); ok {
		t.Error("custom-statute should be gone after Reload()")
	}
	if _, ok := registry.Get(DefaultProfileID); !ok {
		t.Error("built-ins should survive Reload()")
	}
}

func TestRegistryWatch(t *testing.T) {
	dir := t.TempDir()

	registry := NewRegistry()
	if err := registry.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	changed := make(chan string, 4)
	registry.SetOnChange(func(event string, profile *Profile) {
		if profile != nil {
			changed <- profile.ProfileID
		}
	})

	if err := registry.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer registry.StopWatch()

	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(customProfileYAML), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-changed:
		if id != "custom-statute" {
			t.Errorf("onChange profile = %q, want custom-statute", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for profile change")
	}
}

func TestRegistryWatchWithoutDirectory(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Watch(); err == nil {
		t.Error("Watch() without directory should return error")
	}
}

func TestMarshalProfileRoundTrip(t *testing.T) {
	original, err := BuiltinProfile("en-statute")
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalProfile(original)
	if err != nil {
		t.Fatalf("MarshalProfile() error = %v", err)
	}
	parsed, err := ParseProfile(data)
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if parsed.Article.Header != original.Article.Header {
		t.Errorf("article header = %q, want %q", parsed.Article.Header, original.Article.Header)
	}
}
