package gitver

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testRepoSingleCommit adds a single commit to the repository and returns the commit hash
func testRepoSingleCommit(repo *git.Repository) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = writeFile(workTree.Filesystem, "test.txt", "Hello world")
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = workTree.Add("test.txt")
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit("Initial commit", &git.CommitOptions{Author: testSignature})
}

// testRepoTagged adds a commit tagged with the given name, the shape the
// describe grammar's tag form is built from
func testRepoTagged(repo *git.Repository, tag string) (plumbing.Hash, error) {
	hash, err := testRepoSingleCommit(repo)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = repo.CreateTag(tag, hash, nil)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return hash, nil
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
