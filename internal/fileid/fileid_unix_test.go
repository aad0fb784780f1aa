//go:build unix

package fileid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetSameInodeForHardlinks(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "orig")
	link := filepath.Join(dir, "link")

	if err := os.WriteFile(orig, []byte("data"), 0o644); err != nil {
		t.Fatalf("write orig: %v", err)
	}
	if err := os.Link(orig, link); err != nil {
		t.Fatalf("link: %v", err)
	}

	origInfo, err := os.Lstat(orig)
	if err != nil {
		t.Fatalf("lstat orig: %v", err)
	}
	linkInfo, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("lstat link: %v", err)
	}

	origID, ok := Get(orig, origInfo)
	if !ok {
		t.Fatalf("Get(orig): not ok")
	}
	linkID, ok := Get(link, linkInfo)
	if !ok {
		t.Fatalf("Get(link): not ok")
	}

	if origID != linkID {
		t.Fatalf("expected hardlinked files to share an identity, got %+v != %+v", origID, linkID)
	}
}

func TestGetDifferentFilesDiffer(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	if err := os.WriteFile(a, []byte("a"), 0o644); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("b"), 0o644); err != nil {
		t.Fatalf("write b: %v", err)
	}

	aInfo, _ := os.Lstat(a)
	bInfo, _ := os.Lstat(b)

	aID, ok := Get(a, aInfo)
	if !ok {
		t.Fatalf("Get(a): not ok")
	}
	bID, ok := Get(b, bInfo)
	if !ok {
		t.Fatalf("Get(b): not ok")
	}

	if aID == bID {
		t.Fatalf("expected distinct files to have distinct identities")
	}
}
