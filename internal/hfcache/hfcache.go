// Package hfcache answers whether a Hugging Face model already has files in
// the local hub cache. It is the default check for large-download mode: when
// nothing is cached the downloader prints its own progress and ours stays
// quiet.
package hfcache

import (
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the hub cache root, honouring HF_HUB_CACHE and HF_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("HF_HUB_CACHE"); dir != "" {
		return dir, nil
	}
	if home := os.Getenv("HF_HOME"); home != "" {
		return filepath.Join(home, "hub"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "huggingface", "hub"), nil
}

// RepoDir maps "org/model" to its cache folder name "models--org--model".
func RepoDir(model string) string {
	return "models--" + strings.ReplaceAll(model, "/", "--")
}

// Present reports whether model has any cached files.
func Present(model string) bool {
	root, err := Dir()
	if err != nil {
		return false
	}
	return PresentIn(root, model)
}

// PresentIn is Present with an explicit cache root.
func PresentIn(root, model string) bool {
	entries, err := os.ReadDir(filepath.Join(root, RepoDir(model)))
	return err == nil && len(entries) > 0
}
