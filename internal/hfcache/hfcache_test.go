package hfcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepoDir(t *testing.T) {
	if got := RepoDir("togethercomputer/RedPajama-INCITE-Chat-3B-v1"); got != "models--togethercomputer--RedPajama-INCITE-Chat-3B-v1" {
		t.Errorf("RepoDir() = %q", got)
	}
}

func TestPresentIn(t *testing.T) {
	root := t.TempDir()

	if PresentIn(root, "org/model") {
		t.Error("missing folder reported as cached")
	}

	dir := filepath.Join(root, "models--org--model")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if PresentIn(root, "org/model") {
		t.Error("empty folder reported as cached")
	}

	if err := os.MkdirAll(filepath.Join(dir, "snapshots"), 0755); err != nil {
		t.Fatal(err)
	}
	if !PresentIn(root, "org/model") {
		t.Error("populated folder reported as missing")
	}
}

func TestDirEnvPrecedence(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("HF_HOME", "")
	t.Setenv("HF_HUB_CACHE", "")

	if got, _ := Dir(); got != filepath.Join("/home/tester", ".cache", "huggingface", "hub") {
		t.Errorf("default Dir() = %q", got)
	}

	t.Setenv("HF_HOME", "/data/hf")
	if got, _ := Dir(); got != filepath.Join("/data/hf", "hub") {
		t.Errorf("HF_HOME Dir() = %q", got)
	}

	t.Setenv("HF_HUB_CACHE", "/fast/hub")
	if got, _ := Dir(); got != "/fast/hub" {
		t.Errorf("HF_HUB_CACHE Dir() = %q", got)
	}
}

func TestPresentUsesEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HF_HUB_CACHE", root)

	if err := os.MkdirAll(filepath.Join(root, "models--org--model", "blobs"), 0755); err != nil {
		t.Fatal(err)
	}
	if !Present("org/model") {
		t.Error("Present() should read HF_HUB_CACHE")
	}
	if Present("org/other") {
		t.Error("Present() reported an uncached model")
	}
}
