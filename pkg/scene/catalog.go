package scene

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	Name        string // Name accepted by Builtin, or the file name without extension
	DisplayName string
	Description string
	Type        string // "builtin" or "file"
	FilePath    string // Scene file path (file type only)
}

// ListBuiltinScenes returns the built-in scenes sorted by name
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for name, entry := range builtins {
		scenes = append(scenes, SceneInfo{
			Name:        name,
			DisplayName: titleCase(name),
			Description: entry.description,
			Type:        "builtin",
		})
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes
}

// sceneExtensions are the file extensions recognized as scene descriptions
var sceneExtensions = []string{".json", ".yaml", ".yml"}

// ListSceneFiles scans dir (not recursively) for scene description files.
// A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []SceneInfo{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan scenes directory")
	}

	var scenes []SceneInfo
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains(sceneExtensions, ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenes = append(scenes, SceneInfo{
			Name:        name,
			DisplayName: titleCase(name),
			Type:        "file",
			FilePath:    filepath.Join(dir, entry.Name()),
		})
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ListAllScenes returns the built-in scenes followed by the scene files in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	files, err := ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	return append(ListBuiltinScenes(), files...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
