// Package gitops renders each deployment's assigned template into a
// git-backed manifest tree and pushes the result. Its processor is an
// event consumer subscribed to the same event stream as the
// reconciler, reacting to Deployment and Assignment events by rewriting
// the affected paths and committing.
package gitops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Repo is the GitOps collaborator's view of its working tree: clone once
// at startup, then write/remove files and commit+push as events arrive.
type Repo interface {
	WriteFile(path string, contents []byte) error
	RemoveDir(path string) error
	ReadFile(path string) ([]byte, error)
	Commit(authorName, authorEmail, message string) error
	Push() error
}

// RemoteRepo is a Repo backed by a real git remote, cloned to a local
// working directory with go-git.
type RemoteRepo struct {
	dir  string
	repo *git.Repository
	auth transport.AuthMethod
}

// NewRemoteRepo clones url at ref into a fresh directory under baseDir,
// authenticating with the private key at sshKeyPath when set.
func NewRemoteRepo(baseDir, url, ref, sshKeyPath string) (*RemoteRepo, error) {
	dir, err := os.MkdirTemp(baseDir, "fabriq-gitops-")
	if err != nil {
		return nil, fmt.Errorf("gitops: create working dir: %w", err)
	}

	var auth transport.AuthMethod
	if sshKeyPath != "" {
		auth, err = gitssh.NewPublicKeysFromFile("git", sshKeyPath, "")
		if err != nil {
			return nil, fmt.Errorf("gitops: load ssh key: %w", err)
		}
	}

	repo, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(ref),
		SingleBranch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("gitops: clone %s: %w", url, err)
	}

	return &RemoteRepo{dir: dir, repo: repo, auth: auth}, nil
}

func (r *RemoteRepo) abs(path string) string { return filepath.Join(r.dir, filepath.FromSlash(path)) }

func (r *RemoteRepo) WriteFile(path string, contents []byte) error {
	full := r.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("gitops: mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(full, contents, 0o644); err != nil {
		return fmt.Errorf("gitops: write %s: %w", path, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	_, err = wt.Add(filepath.ToSlash(path))
	return err
}

func (r *RemoteRepo) RemoveDir(path string) error {
	full := r.abs(path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("gitops: remove %s: %w", path, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	_, err = wt.Add(filepath.ToSlash(path))
	return err
}

func (r *RemoteRepo) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(r.abs(path))
}

func (r *RemoteRepo) Commit(authorName, authorEmail, message string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return err
	}
	if status.IsClean() {
		return nil
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: authorName, Email: authorEmail},
	})
	return err
}

func (r *RemoteRepo) Push() error {
	err := r.repo.Push(&git.PushOptions{Auth: r.auth})
	if err == git.NoErrAlreadyUpToDate {
		return nil
	}
	return err
}
